package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/jlaffaye/ftp"

	"recfetch/internal/config"
	"recfetch/internal/model"
)

// Conn - сессия с сервером записи, уже авторизованная и находящаяся в каталоге с записями.
type Conn interface {
	// List возвращает содержимое текущего каталога в порядке, в котором его отдал сервер.
	List(ctx context.Context) ([]model.RemoteFile, error)
	// Retr открывает файл на чтение. Ошибка Close означает, что передача не подтверждена сервером.
	Retr(ctx context.Context, name string) (io.ReadCloser, error)
	Close() error
}

// Dialer устанавливает новую сессию.
type Dialer func(ctx context.Context) (Conn, error)

// NewFTPDialer возвращает Dialer, который подключается к FTP-серверу,
// логинится и переходит в cfg.Dir.
func NewFTPDialer(cfg config.FTP) Dialer {
	return func(ctx context.Context) (Conn, error) {
		c, err := ftp.Dial(cfg.Addr,
			ftp.DialWithContext(ctx),
			ftp.DialWithTimeout(cfg.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("dial %s failed: %w", cfg.Addr, err)
		}

		if err := c.Login(cfg.User, cfg.Password); err != nil {
			c.Quit()
			return nil, fmt.Errorf("login as %q failed: %w", cfg.User, err)
		}

		if err := c.ChangeDir(cfg.Dir); err != nil {
			c.Quit()
			return nil, fmt.Errorf("cd %q failed: %w", cfg.Dir, err)
		}

		return &ftpConn{c: c}, nil
	}
}

type ftpConn struct {
	c *ftp.ServerConn
}

func (fc *ftpConn) List(ctx context.Context) ([]model.RemoteFile, error) {
	entries, err := fc.c.List("")
	if err != nil {
		return nil, err
	}

	files := make([]model.RemoteFile, 0, len(entries))
	for _, e := range entries {
		files = append(files, model.RemoteFile{
			Name:  e.Name,
			Size:  int64(e.Size),
			IsDir: e.Type == ftp.EntryTypeFolder,
		})
	}
	return files, nil
}

func (fc *ftpConn) Retr(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := fc.c.Retr(name)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (fc *ftpConn) Close() error {
	return fc.c.Quit()
}
