package telegram

import (
	"testing"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaLocationPhoto(t *testing.T) {
	media := &tg.MessageMediaPhoto{}
	media.SetPhoto(&tg.Photo{
		ID:            111,
		AccessHash:    222,
		FileReference: []byte{1, 2, 3},
		Sizes: []tg.PhotoSizeClass{
			&tg.PhotoSize{Type: "m", Size: 5000},
			&tg.PhotoSize{Type: "x", Size: 20000},
		},
	})

	location, ext, size, kind, err := mediaLocation(media)
	require.NoError(t, err)
	assert.Equal(t, ".jpg", ext)
	assert.Equal(t, int64(20000), size)
	assert.Equal(t, "photo", kind)

	photoLoc, ok := location.(*tg.InputPhotoFileLocation)
	require.True(t, ok)
	assert.Equal(t, int64(111), photoLoc.ID)
	assert.Equal(t, int64(222), photoLoc.AccessHash)
	assert.Equal(t, "x", photoLoc.ThumbSize)
}

func TestMediaLocationPhotoUnavailable(t *testing.T) {
	// Фото без содержимого (например, удаленное по TTL)
	_, _, _, _, err := mediaLocation(&tg.MessageMediaPhoto{})
	assert.ErrorIs(t, err, ErrNoMedia)

	media := &tg.MessageMediaPhoto{}
	media.SetPhoto(&tg.Photo{ID: 111})
	_, _, _, _, err = mediaLocation(media)
	assert.ErrorIs(t, err, ErrNoMedia)
}

func TestMediaLocationDocument(t *testing.T) {
	media := &tg.MessageMediaDocument{}
	media.SetDocument(&tg.Document{
		ID:            333,
		AccessHash:    444,
		FileReference: []byte{4, 5, 6},
		MimeType:      "video/mp4",
		Size:          98765,
	})

	location, ext, size, kind, err := mediaLocation(media)
	require.NoError(t, err)
	assert.Equal(t, ".mp4", ext)
	assert.Equal(t, int64(98765), size)
	assert.Equal(t, "video", kind)

	docLoc, ok := location.(*tg.InputDocumentFileLocation)
	require.True(t, ok)
	assert.Equal(t, int64(333), docLoc.ID)
	assert.Equal(t, int64(444), docLoc.AccessHash)
}

func TestMediaLocationNotDownloadable(t *testing.T) {
	// Гео и опросы не имеют файлового содержимого
	_, _, _, _, err := mediaLocation(&tg.MessageMediaGeo{})
	assert.ErrorIs(t, err, ErrNoMedia)

	_, _, _, _, err = mediaLocation(&tg.MessageMediaPoll{})
	assert.ErrorIs(t, err, ErrNoMedia)
}

func TestLargestPhotoSize(t *testing.T) {
	thumbType, size := largestPhotoSize([]tg.PhotoSizeClass{
		&tg.PhotoSize{Type: "s", Size: 100},
		&tg.PhotoSize{Type: "y", Size: 30000},
		&tg.PhotoSize{Type: "m", Size: 5000},
	})
	assert.Equal(t, "y", thumbType)
	assert.Equal(t, int64(30000), size)

	// Прогрессивное фото хранит варианты внутри одного размера
	thumbType, size = largestPhotoSize([]tg.PhotoSizeClass{
		&tg.PhotoSize{Type: "m", Size: 5000},
		&tg.PhotoSizeProgressive{Type: "x", Sizes: []int{1000, 8000, 40000}},
	})
	assert.Equal(t, "x", thumbType)
	assert.Equal(t, int64(40000), size)

	thumbType, size = largestPhotoSize(nil)
	assert.Empty(t, thumbType)
	assert.Zero(t, size)
}

func TestDocumentExt(t *testing.T) {
	// Имя файла из атрибутов имеет приоритет над mime-типом
	doc := &tg.Document{
		MimeType: "application/pdf",
		Attributes: []tg.DocumentAttributeClass{
			&tg.DocumentAttributeFilename{FileName: "report.docx"},
		},
	}
	assert.Equal(t, ".docx", documentExt(doc))

	assert.Equal(t, ".mp3", documentExt(&tg.Document{MimeType: "audio/mpeg"}))
	assert.Equal(t, ".ogg", documentExt(&tg.Document{MimeType: "audio/ogg"}))
	assert.Equal(t, ".gif", documentExt(&tg.Document{MimeType: "image/gif"}))
	assert.Equal(t, ".pdf", documentExt(&tg.Document{MimeType: "application/pdf"}))
	assert.Equal(t, ".bin", documentExt(&tg.Document{MimeType: "application/octet-stream"}))

	// Имя без расширения не подменяет mime-эвристику
	doc = &tg.Document{
		MimeType: "video/mp4",
		Attributes: []tg.DocumentAttributeClass{
			&tg.DocumentAttributeFilename{FileName: "clip"},
		},
	}
	assert.Equal(t, ".mp4", documentExt(doc))
}
