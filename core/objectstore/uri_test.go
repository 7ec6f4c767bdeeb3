package objectstore_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/meloserve/meloserve/core/objectstore"
)

var _ = Describe("ParseURI", func() {
	It("parses gs URIs", func() {
		scheme, bucket, object, err := objectstore.ParseURI("gs://my-bucket/path/to/file.txt")
		Expect(err).ToNot(HaveOccurred())
		Expect(scheme).To(Equal("gs"))
		Expect(bucket).To(Equal("my-bucket"))
		Expect(object).To(Equal("path/to/file.txt"))
	})

	It("parses s3 URIs", func() {
		scheme, bucket, object, err := objectstore.ParseURI("s3://data/input.txt")
		Expect(err).ToNot(HaveOccurred())
		Expect(scheme).To(Equal("s3"))
		Expect(bucket).To(Equal("data"))
		Expect(object).To(Equal("input.txt"))
	})

	DescribeTable("rejects malformed URIs",
		func(uri string) {
			_, _, _, err := objectstore.ParseURI(uri)
			Expect(err).To(MatchError(objectstore.ErrInvalidURI))
		},
		Entry("empty string", ""),
		Entry("unsupported scheme", "http://bucket/object"),
		Entry("bucket only", "gs://bucket"),
		Entry("bucket with trailing slash", "gs://bucket/"),
		Entry("no scheme", "bucket/object"),
		Entry("scheme only", "gs://"),
	)

	It("round-trips through URI", func() {
		scheme, bucket, object, err := objectstore.ParseURI(objectstore.URI("gs", "b", "dir/o.wav"))
		Expect(err).ToNot(HaveOccurred())
		Expect(scheme).To(Equal("gs"))
		Expect(bucket).To(Equal("b"))
		Expect(object).To(Equal("dir/o.wav"))
	})
})

var _ = Describe("ForScheme", func() {
	It("rejects unsupported schemes", func() {
		_, err := objectstore.ForScheme(context.Background(), "ftp")
		Expect(err).To(MatchError(objectstore.ErrInvalidURI))
	})
})
