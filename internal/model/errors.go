package model

import "errors"

var (
	ErrAlreadyRunning = errors.New("already downloading")
	ErrConnection     = errors.New("connection error")
	ErrNoFilesFound   = errors.New("no files found")
	ErrTransferIO     = errors.New("transfer io error")
	ErrRender         = errors.New("render error")
)
