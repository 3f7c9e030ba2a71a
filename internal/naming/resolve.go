package naming

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// Resolve возвращает первый несуществующий путь вида dir/base[ N]ext.
//
// Примеры (уже существуют "Mån 1030.mp4" и "Mån 1030 1.mp4"):
//
//	"Mån 1030", ".mp4" -> "Mån 1030 2.mp4"
//
// Проверка не атомарна, вызывающий должен гарантировать, что параллельно никто
// не выбирает имя в том же каталоге.
func Resolve(dir, base, ext string) (string, error) {
	suffix := ""
	for i := 1; ; i++ {
		path := filepath.Join(dir, base+suffix+ext)

		_, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", err
		}

		suffix = " " + strconv.Itoa(i)
	}
}
