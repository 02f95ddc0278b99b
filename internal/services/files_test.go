package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"skillup-go/internal/apperr"
	"skillup-go/internal/config"
	"skillup-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileUploadDownloadAndShare(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, owner := f.user(t, "owner@example.com", models.RoleStudent)
	friend, friendCaller := f.user(t, "friend@example.com", models.RoleStudent)

	body := "lecture notes"
	file, err := f.svc.Files.Upload(ctx, owner, UploadFile{
		FileName:    "notes.TXT",
		ContentType: "text/plain",
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	})
	require.NoError(t, err)
	assert.Equal(t, "document", file.FileType)
	assert.Equal(t, "notes.TXT", file.OriginalFileName)
	assert.True(t, strings.HasSuffix(file.FileName, ".txt"))

	_, err = f.svc.Files.Download(ctx, friendCaller, DownloadFile{ID: file.ID})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = f.svc.Files.Share(ctx, friendCaller, ShareFile{FileID: file.ID, UserID: owner.UserID})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	share, err := f.svc.Files.Share(ctx, owner, ShareFile{FileID: file.ID, UserID: friend.ID})
	require.NoError(t, err)
	assert.Equal(t, "read", share.AccessLevel)

	_, err = f.svc.Files.Share(ctx, owner, ShareFile{FileID: file.ID, UserID: friend.ID})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	dl, err := f.svc.Files.Download(ctx, friendCaller, DownloadFile{ID: file.ID})
	require.NoError(t, err)
	data, err := io.ReadAll(dl.Body)
	require.NoError(t, dl.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	_, err = f.svc.Files.Delete(ctx, friendCaller, DeleteFile{ID: file.ID})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	_, err = f.svc.Files.Delete(ctx, owner, DeleteFile{ID: file.ID})
	require.NoError(t, err)
	_, err = f.svc.Files.Download(ctx, owner, DownloadFile{ID: file.ID})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestFileUploadRejectsTypeAndSize(t *testing.T) {
	f := newFixture(t)
	_, owner := f.user(t, "owner@example.com", models.RoleStudent)

	_, err := f.svc.Files.Upload(context.Background(), owner, UploadFile{FileName: "run.exe", Size: 10, Body: strings.NewReader("x")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Files.Upload(context.Background(), owner, UploadFile{FileName: "big.pdf", Size: 4096, Body: strings.NewReader("x")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestFileUploadFollowsReloadedLimits(t *testing.T) {
	live := &config.Config{Storage: config.StorageConfig{MaxFileSize: 2, AllowedTypes: []string{"txt"}}}
	f := newFixture(t, func(d *Deps) { d.Live = func() *config.Config { return live } })
	_, owner := f.user(t, "owner@example.com", models.RoleStudent)
	ctx := context.Background()

	_, err := f.svc.Files.Upload(ctx, owner, UploadFile{FileName: "notes.txt", Size: 3, Body: strings.NewReader("abc")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.Files.Upload(ctx, owner, UploadFile{FileName: "doc.pdf", Size: 1, Body: strings.NewReader("a")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	live = &config.Config{Storage: config.StorageConfig{MaxFileSize: 8, AllowedTypes: []string{"txt", "pdf"}}}
	stored, err := f.svc.Files.Upload(ctx, owner, UploadFile{FileName: "notes.txt", Size: 3, Body: strings.NewReader("abc")})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.FileSize)
	_, err = f.svc.Files.Upload(ctx, owner, UploadFile{FileName: "doc.pdf", Size: 1, Body: strings.NewReader("a")})
	assert.NoError(t, err)
}

func TestFileListAndCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, owner := f.user(t, "owner@example.com", models.RoleStudent)
	for _, name := range []string{"a.pdf", "b.txt", "c.png"} {
		_, err := f.svc.Files.Upload(ctx, owner, UploadFile{FileName: name, Size: 3, Body: strings.NewReader("abc")})
		require.NoError(t, err)
	}

	page, err := f.svc.Files.List(ctx, owner, ListFiles{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasNext)

	cats, err := f.svc.Files.Categories(ctx, owner, FileCategories{})
	require.NoError(t, err)
	assert.Equal(t, []FileCategory{
		{Category: "document", Count: 2, TotalSize: 6},
		{Category: "image", Count: 1, TotalSize: 3},
	}, cats)
}

func TestFileUpdateRenamesAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, owner := f.user(t, "owner@example.com", models.RoleStudent)
	_, stranger := f.user(t, "stranger@example.com", models.RoleStudent)

	file, err := f.svc.Files.Upload(ctx, owner, UploadFile{FileName: "notes.txt", Size: 3, Body: strings.NewReader("abc")})
	require.NoError(t, err)
	assert.False(t, file.IsPublic)

	name := "week-1.txt"
	public := true
	_, err = f.svc.Files.Update(ctx, stranger, UpdateFile{ID: file.ID, IsPublic: &public})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	bad := "week-1.pdf"
	_, err = f.svc.Files.Update(ctx, owner, UpdateFile{ID: file.ID, FileName: &bad})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	updated, err := f.svc.Files.Update(ctx, owner, UpdateFile{ID: file.ID, FileName: &name, IsPublic: &public})
	require.NoError(t, err)
	assert.Equal(t, "week-1.txt", updated.OriginalFileName)
	assert.Equal(t, file.FileName, updated.FileName)
	assert.True(t, updated.IsPublic)

	dl, err := f.svc.Files.Download(ctx, stranger, DownloadFile{ID: file.ID})
	require.NoError(t, err)
	require.NoError(t, dl.Body.Close())
	assert.Equal(t, "week-1.txt", dl.File.OriginalFileName)
}
