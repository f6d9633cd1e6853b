package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"seungpyo.lee/BlogBoard/internal/domain"
)

// azureBlobStore stores images in an Azure Blob Storage container.
type azureBlobStore struct {
	client    *azblob.Client
	container string
}

// NewAzureBlobStore connects to the storage account and makes sure the
// container exists with public blob read access.
func NewAzureBlobStore(ctx context.Context, connectionString, container string) (domain.BlobStore, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	_, err = client.CreateContainer(ctx, container, &azblob.CreateContainerOptions{
		Access: to.Ptr(azblob.PublicAccessTypeBlob),
	})
	if err != nil {
		var respErr *azcore.ResponseError
		if !errors.As(err, &respErr) || respErr.ErrorCode != string(bloberror.ContainerAlreadyExists) {
			return nil, fmt.Errorf("failed to create container: %w", err)
		}
	}
	return &azureBlobStore{client: client, container: container}, nil
}

func (s *azureBlobStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	_, err := s.client.UploadStream(ctx, s.container, name, bytes.NewReader(data), &azblob.UploadStreamOptions{
		BlockSize: int64(1024) * 256, // 256KB
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: to.Ptr(contentType),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload blob: %w", err)
	}
	return strings.TrimRight(s.client.URL(), "/") + "/" + url.PathEscape(s.container) + "/" + url.PathEscape(name), nil
}

func (s *azureBlobStore) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, name, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}
