package model

// RemoteFile представляет запись в листинге удалённого каталога.
type RemoteFile struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	IsDir bool   `json:"is_dir,omitempty"`
}
