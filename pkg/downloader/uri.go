package downloader

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/meloserve/meloserve/pkg/utils"
)

const (
	HTTPPrefix  = "http://"
	HTTPSPrefix = "https://"
	LocalPrefix = "file://"
)

type URI string

// DownloadFile fetches the URI into filePath, verifying the sha256 checksum
// when one is given. Existing files with a matching checksum are kept.
// downloadStatus receives (file, written, total, percentage) while the
// transfer runs.
func (uri URI) DownloadFile(filePath, sha string, fileN, total int, downloadStatus func(string, string, string, float64)) error {
	url := string(uri)

	if strings.HasPrefix(url, LocalPrefix) {
		return uri.copyLocalFile(filePath)
	}

	// Check if the file already exists
	_, err := os.Stat(filePath)
	if err == nil {
		if sha != "" {
			calculatedSHA, err := calculateSHA(filePath)
			if err != nil {
				return fmt.Errorf("failed to calculate SHA for file %q: %v", filePath, err)
			}
			if calculatedSHA == sha {
				log.Debug().Msgf("File %q already exists and matches the SHA. Skipping download", filePath)
				return nil
			}
			// SHA doesn't match, delete the file and download again
			if err := os.Remove(filePath); err != nil {
				return fmt.Errorf("failed to remove existing file %q: %v", filePath, err)
			}
			log.Debug().Msgf("Removed %q (SHA doesn't match)", filePath)
		} else {
			log.Debug().Msgf("File %q already exists. Skipping download", filePath)
			return nil
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check file %q existence: %v", filePath, err)
	}

	log.Info().Msgf("Downloading %q", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download file %q: %v", filePath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to download url %q, invalid status code %d", url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return fmt.Errorf("failed to create parent directory for file %q: %v", filePath, err)
	}

	// save partial download to dedicated file
	tmpFilePath := filePath + ".partial"
	if err := removePartialFile(tmpFilePath); err != nil {
		return err
	}

	outFile, err := os.Create(tmpFilePath)
	if err != nil {
		return fmt.Errorf("failed to create file %q: %v", tmpFilePath, err)
	}
	defer outFile.Close()

	progress := &progressWriter{
		fileName:       tmpFilePath,
		total:          resp.ContentLength,
		hash:           sha256.New(),
		fileNo:         fileN,
		totalFiles:     total,
		downloadStatus: downloadStatus,
	}
	if _, err := io.Copy(io.MultiWriter(outFile, progress), resp.Body); err != nil {
		return fmt.Errorf("failed to write file %q: %v", filePath, err)
	}

	if err := os.Rename(tmpFilePath, filePath); err != nil {
		return fmt.Errorf("failed to rename temporary file %s -> %s: %v", tmpFilePath, filePath, err)
	}

	if sha != "" {
		calculatedSHA := fmt.Sprintf("%x", progress.hash.Sum(nil))
		if calculatedSHA != sha {
			return fmt.Errorf("SHA mismatch for file %q ( calculated: %s != metadata: %s )", filePath, calculatedSHA, sha)
		}
	} else {
		log.Debug().Msgf("SHA missing for %q. Skipping validation", filePath)
	}

	log.Info().Msgf("File %q downloaded and verified", filePath)
	return nil
}

// copyLocalFile handles file:// URIs, restricted to the destination's parent
// directory tree.
func (uri URI) copyLocalFile(filePath string) error {
	rawURL := strings.TrimPrefix(string(uri), LocalPrefix)
	resolvedFile, err := filepath.EvalSymlinks(rawURL)
	if err != nil {
		return err
	}
	basePath := filepath.Dir(filePath)
	if err := utils.InTrustedRoot(resolvedFile, basePath); err != nil {
		log.Debug().Str("resolvedFile", resolvedFile).Str("basePath", basePath).Msg("blocked an attempt to read a file url outside of the assets path")
		return err
	}
	data, err := os.ReadFile(resolvedFile)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

func removePartialFile(tmpFilePath string) error {
	_, err := os.Stat(tmpFilePath)
	if err == nil {
		log.Debug().Msgf("Removing temporary file %s", tmpFilePath)
		if err := os.Remove(tmpFilePath); err != nil {
			return fmt.Errorf("failed to remove temporary download file %s: %v", tmpFilePath, err)
		}
	}
	return nil
}

func calculateSHA(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
