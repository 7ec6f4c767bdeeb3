package downloader_test

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/meloserve/meloserve/pkg/downloader"
)

var _ = Describe("DownloadFile", func() {
	var (
		server  *httptest.Server
		destDir string
		content string
		sha     string
	)

	noStatus := func(string, string, string, float64) {}

	BeforeEach(func() {
		content = "model bytes"
		sha = fmt.Sprintf("%x", sha256.Sum256([]byte(content)))

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/missing.bin" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, content)
		}))

		var err error
		destDir, err = os.MkdirTemp("", "downloader")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
		os.RemoveAll(destDir)
	})

	It("downloads a file and verifies its checksum", func() {
		dst := filepath.Join(destDir, "model.bin")
		uri := downloader.URI(server.URL + "/model.bin")

		Expect(uri.DownloadFile(dst, sha, 1, 1, noStatus)).To(Succeed())

		data, err := os.ReadFile(dst)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(Equal(content))
	})

	It("fails on a checksum mismatch", func() {
		dst := filepath.Join(destDir, "model.bin")
		uri := downloader.URI(server.URL + "/model.bin")

		err := uri.DownloadFile(dst, "deadbeef", 1, 1, noStatus)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("SHA mismatch"))
	})

	It("fails on an HTTP error status", func() {
		dst := filepath.Join(destDir, "missing.bin")
		uri := downloader.URI(server.URL + "/missing.bin")

		err := uri.DownloadFile(dst, "", 1, 1, noStatus)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid status code 404"))
	})

	It("skips the download when the file matches the checksum", func() {
		dst := filepath.Join(destDir, "model.bin")
		Expect(os.WriteFile(dst, []byte(content), 0644)).To(Succeed())
		server.Close() // any fetch attempt would now fail

		uri := downloader.URI(server.URL + "/model.bin")
		Expect(uri.DownloadFile(dst, sha, 1, 1, noStatus)).To(Succeed())
	})

	It("re-downloads when the existing file has a different checksum", func() {
		dst := filepath.Join(destDir, "model.bin")
		Expect(os.WriteFile(dst, []byte("stale"), 0644)).To(Succeed())

		uri := downloader.URI(server.URL + "/model.bin")
		Expect(uri.DownloadFile(dst, sha, 1, 1, noStatus)).To(Succeed())

		data, err := os.ReadFile(dst)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(Equal(content))
	})

	It("copies file URIs inside the destination tree", func() {
		src := filepath.Join(destDir, "source.bin")
		Expect(os.WriteFile(src, []byte(content), 0644)).To(Succeed())

		dst := filepath.Join(destDir, "model.bin")
		uri := downloader.URI("file://" + src)
		Expect(uri.DownloadFile(dst, "", 1, 1, noStatus)).To(Succeed())

		data, err := os.ReadFile(dst)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(Equal(content))
	})

	It("blocks file URIs outside the destination tree", func() {
		outside, err := os.MkdirTemp("", "outside")
		Expect(err).ToNot(HaveOccurred())
		defer os.RemoveAll(outside)

		src := filepath.Join(outside, "secret.bin")
		Expect(os.WriteFile(src, []byte("secret"), 0644)).To(Succeed())

		dst := filepath.Join(destDir, "model.bin")
		uri := downloader.URI("file://" + src)
		Expect(uri.DownloadFile(dst, "", 1, 1, noStatus)).ToNot(Succeed())
		Expect(dst).ToNot(BeAnExistingFile())
	})
})
