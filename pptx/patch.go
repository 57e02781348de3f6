// Package pptx reads, patches and synthesizes PresentationML packages.
package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"

	"colorslide/model"
	"colorslide/themexml"
)

const (
	// ContentType is the media type of a .pptx file.
	ContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

	// ThemePart is the theme definition the slide master points at.
	ThemePart = "ppt/theme/theme1.xml"
)

// ErrMalformedContainer means the bytes are not a usable presentation package.
var ErrMalformedContainer = errors.New("malformed container")

// InjectTheme replaces the theme part with one rendered from colors. Every
// other entry is copied without recompression, in its original order.
func InjectTheme(container []byte, themeName string, colors model.ThemeColors) ([]byte, error) {
	return injectTheme(container, themeName, colors, themexml.Serializer{})
}

func injectTheme(container []byte, themeName string, colors model.ThemeColors, ser themexml.Serializer) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(container), int64(len(container)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}

	var theme *zip.File
	for _, f := range zr.File {
		if f.Name == ThemePart {
			theme = f
			break
		}
	}
	if theme == nil {
		return nil, fmt.Errorf("%w: %s not found", ErrMalformedContainer, ThemePart)
	}

	themeXML, err := ser.Serialize(themeName, colors)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(container) + len(themeXML))
	zw := zip.NewWriter(&buf)
	if zr.Comment != "" {
		if err := zw.SetComment(zr.Comment); err != nil {
			return nil, fmt.Errorf("copy archive comment: %w", err)
		}
	}

	for _, f := range zr.File {
		if f != theme {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("%w: copy %s: %v", ErrMalformedContainer, f.Name, err)
			}
			continue
		}

		hdr := &zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
			Comment:  f.Comment,
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
		if _, err := w.Write(themeXML); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish container: %w", err)
	}
	return buf.Bytes(), nil
}

// Parts lists the entry names of a container in archive order.
func Parts(container []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(container), int64(len(container)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}
