package fyne

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// FileDialog is a helper for creating file open dialogs.
type FileDialog struct {
	window     fyne.Window
	callback   func(string)
	logger     *slog.Logger
	extensions []string
	location   string
}

// NewFileDialog creates a new file dialog.
func NewFileDialog(window fyne.Window, callback func(string), logger *slog.Logger) *FileDialog {
	return &FileDialog{
		window:   window,
		callback: callback,
		logger:   logger,
	}
}

// WithExtensions limits the dialog to files with the given extensions.
func (d *FileDialog) WithExtensions(exts ...string) *FileDialog {
	d.extensions = exts
	return d
}

// WithLocation opens the dialog in dir. An empty dir keeps the default.
func (d *FileDialog) WithLocation(dir string) *FileDialog {
	d.location = dir
	return d
}

// Show displays the file dialog.
func (d *FileDialog) Show() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			d.logger.Error("file dialog error", slog.Any("error", err))
			return
		}
		if reader == nil {
			return // User cancelled
		}
		defer reader.Close()

		filePath := reader.URI().Path()
		if d.callback != nil {
			d.callback(filePath)
		}
	}, d.window)

	if len(d.extensions) > 0 {
		fd.SetFilter(storage.NewExtensionFileFilter(d.extensions))
	}
	if d.location != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(d.location)); err == nil {
			fd.SetLocation(lister)
		} else {
			d.logger.Debug("ignoring dialog location", slog.String("dir", d.location), slog.Any("error", err))
		}
	}
	fd.Show()
}
