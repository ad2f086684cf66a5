package telegram

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

// DownloadMedia скачивает медиа из сообщения в локальный файл с уникальным
// именем. destDir переопределяет директорию загрузок; пустая строка —
// директория по умолчанию. Если в сообщении нет медиа, файл не создается.
func (c *Client) DownloadMedia(ctx context.Context, entity string, messageID int, destDir string) (*DownloadedMedia, error) {
	peer, err := c.ResolvePeer(ctx, entity)
	if err != nil {
		return nil, err
	}

	msg, _, err := c.rawMessageByID(ctx, peer, messageID)
	if err != nil {
		return nil, err
	}

	media, ok := msg.GetMedia()
	if !ok {
		return nil, errors.Wrapf(ErrNoMedia, "message %d", messageID)
	}

	location, ext, size, kind, err := mediaLocation(media)
	if err != nil {
		return nil, err
	}

	dir := destDir
	if dir == "" {
		dir = c.downloadsDir
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "destination %q", dir)
	}

	path := filepath.Join(dir, uuid.New().String()+ext)
	if _, err := downloader.NewDownloader().Download(c.api, location).ToPath(ctx, path); err != nil {
		return nil, errors.Wrap(err, "download media")
	}

	c.log.Info("Media downloaded",
		zap.String("entity", entity),
		zap.Int("message_id", messageID),
		zap.String("path", path))

	return &DownloadedMedia{Path: path, MediaType: kind, Size: size}, nil
}

// mediaLocation строит InputFileLocation для скачиваемого медиа.
// Возвращает также расширение файла, размер и тип медиа.
func mediaLocation(media tg.MessageMediaClass) (tg.InputFileLocationClass, string, int64, string, error) {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		photoClass, ok := m.GetPhoto()
		if !ok {
			return nil, "", 0, "", errors.Wrap(ErrNoMedia, "photo is not available")
		}
		photo, ok := photoClass.(*tg.Photo)
		if !ok {
			return nil, "", 0, "", errors.Wrap(ErrNoMedia, "photo is not available")
		}
		thumbType, size := largestPhotoSize(photo.Sizes)
		if thumbType == "" {
			return nil, "", 0, "", errors.Wrap(ErrNoMedia, "photo has no sizes")
		}
		location := &tg.InputPhotoFileLocation{
			ID:            photo.ID,
			AccessHash:    photo.AccessHash,
			FileReference: photo.FileReference,
			ThumbSize:     thumbType,
		}
		return location, ".jpg", size, "photo", nil

	case *tg.MessageMediaDocument:
		docClass, ok := m.GetDocument()
		if !ok {
			return nil, "", 0, "", errors.Wrap(ErrNoMedia, "document is not available")
		}
		doc, ok := docClass.(*tg.Document)
		if !ok {
			return nil, "", 0, "", errors.Wrap(ErrNoMedia, "document is not available")
		}
		location := &tg.InputDocumentFileLocation{
			ID:            doc.ID,
			AccessHash:    doc.AccessHash,
			FileReference: doc.FileReference,
		}
		return location, documentExt(doc), doc.Size, mediaKind(media), nil

	default:
		// Гео, опросы и прочее без файлового содержимого
		return nil, "", 0, "", errors.Wrapf(ErrNoMedia, "media type %T is not downloadable", media)
	}
}

// largestPhotoSize выбирает самый большой вариант фото
func largestPhotoSize(sizes []tg.PhotoSizeClass) (string, int64) {
	var (
		thumbType string
		best      int64
	)
	for _, sizeClass := range sizes {
		switch s := sizeClass.(type) {
		case *tg.PhotoSize:
			if int64(s.Size) >= best {
				best = int64(s.Size)
				thumbType = s.Type
			}
		case *tg.PhotoSizeProgressive:
			for _, n := range s.Sizes {
				if int64(n) >= best {
					best = int64(n)
					thumbType = s.Type
				}
			}
		}
	}
	return thumbType, best
}

// documentExt определяет расширение файла по атрибутам документа
func documentExt(doc *tg.Document) string {
	for _, attr := range doc.Attributes {
		if filename, ok := attr.(*tg.DocumentAttributeFilename); ok {
			if ext := filepath.Ext(filename.FileName); ext != "" {
				return ext
			}
		}
	}
	switch doc.MimeType {
	case "video/mp4":
		return ".mp4"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "image/gif":
		return ".gif"
	case "application/pdf":
		return ".pdf"
	}
	return ".bin"
}
