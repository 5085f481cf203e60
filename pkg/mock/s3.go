package mock

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 is a mock of the S3 API subset used by the storage package.
// It serves a static object list and records deletions.
type S3 struct {
	Objects     []types.Object
	Deleted     []string
	ListError   error
	DeleteError error
}

func (m *S3) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input,
	_ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	prefix := aws.ToString(params.Prefix)

	var contents []types.Object
	for _, obj := range m.Objects {
		if prefix != "" && !strings.HasPrefix(aws.ToString(obj.Key), prefix) {
			continue
		}
		contents = append(contents, obj)
	}

	return &s3.ListObjectsV2Output{
		Contents: contents,
		KeyCount: aws.Int32(int32(len(contents))),
	}, nil
}

func (m *S3) DeleteObject(_ context.Context, params *s3.DeleteObjectInput,
	_ ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	if m.DeleteError != nil {
		return nil, m.DeleteError
	}

	m.Deleted = append(m.Deleted, aws.ToString(params.Key))

	return &s3.DeleteObjectOutput{}, nil
}
