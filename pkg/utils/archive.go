package utils

import (
	"fmt"
	"os"

	"github.com/mholt/archiver/v3"
)

// IsArchive reports whether the file name carries an extension of a
// supported archive format. Voice model bundles usually ship as tar.gz.
func IsArchive(file string) bool {
	iface, err := archiver.ByExtension(file)
	if err != nil {
		return false
	}
	_, ok := iface.(archiver.Unarchiver)
	return ok
}

// ExtractArchive unpacks a voice model bundle into dst. Symlinks are
// rejected, model bundles have no business containing them.
func ExtractArchive(archive, dst string) error {
	iface, err := archiver.ByExtension(archive)
	if err != nil {
		return err
	}

	un, ok := iface.(archiver.Unarchiver)
	if !ok {
		return fmt.Errorf("%s is not an archive", archive)
	}

	tarCfg := &archiver.Tar{
		OverwriteExisting:      true,
		MkdirAll:               true,
		ImplicitTopLevelFolder: false,
		ContinueOnError:        true,
	}
	switch v := iface.(type) {
	case *archiver.Tar:
		un = tarCfg
	case *archiver.TarGz:
		v.Tar = tarCfg
	case *archiver.TarBz2:
		v.Tar = tarCfg
	case *archiver.TarXz:
		v.Tar = tarCfg
	case *archiver.TarZstd:
		v.Tar = tarCfg
	}

	err = archiver.Walk(archive, func(f archiver.File) error {
		if f.FileInfo.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("archive %s contains a symlink", archive)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return un.Unarchive(archive, dst)
}
