package assets

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"wp2presta/models"
)

const ftpTimeout = 15 * time.Second

// ftpUploader holds one lazily opened FTP connection for the run.
type ftpUploader struct {
	addr       string
	user       string
	password   string
	remotePath string
	logger     *slog.Logger

	conn     *ftp.ServerConn
	madeDirs bool
}

func newFTPUploader(cfg models.MigrationConfig, logger *slog.Logger) *ftpUploader {
	addr := cfg.FTPHost
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "21")
	}
	return &ftpUploader{
		addr:       addr,
		user:       cfg.FTPUser,
		password:   cfg.FTPPassword,
		remotePath: strings.Trim(cfg.FTPRemotePath, "/"),
		logger:     logger,
	}
}

// connect tries explicit TLS first and falls back to plain FTP when the
// server does not speak AUTH TLS.
func (u *ftpUploader) connect() (*ftp.ServerConn, error) {
	host, _, _ := net.SplitHostPort(u.addr)
	conn, err := ftp.Dial(u.addr,
		ftp.DialWithTimeout(ftpTimeout),
		ftp.DialWithExplicitTLS(&tls.Config{ServerName: host}),
	)
	if err != nil {
		u.logger.Debug("explicit TLS failed, trying plain ftp", "host", u.addr, "error", err)
		conn, err = ftp.Dial(u.addr, ftp.DialWithTimeout(ftpTimeout))
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", u.addr, err)
		}
	}
	if err := conn.Login(u.user, u.password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("login as %s: %w", u.user, err)
	}
	return conn, nil
}

func (u *ftpUploader) upload(filename string, data []byte) error {
	if u.conn == nil {
		conn, err := u.connect()
		if err != nil {
			return err
		}
		u.conn = conn
	}
	if !u.madeDirs {
		u.makeRemoteDirs()
		u.madeDirs = true
	}

	remote := filename
	if u.remotePath != "" {
		remote = path.Join(u.remotePath, filename)
	}
	if err := u.conn.Stor(remote, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("stor %s: %w", remote, err)
	}
	return nil
}

// makeRemoteDirs creates each segment of the remote path. Errors are
// expected when the directories already exist, so they are ignored.
func (u *ftpUploader) makeRemoteDirs() {
	if u.remotePath == "" {
		return
	}
	current := ""
	for _, segment := range strings.Split(u.remotePath, "/") {
		current = path.Join(current, segment)
		if err := u.conn.MakeDir(current); err != nil {
			u.logger.Debug("remote mkdir", "dir", current, "error", err)
		}
	}
}

func (u *ftpUploader) close() {
	if u.conn == nil {
		return
	}
	if err := u.conn.Quit(); err != nil {
		u.logger.Debug("ftp quit", "error", err)
	}
	u.conn = nil
}
