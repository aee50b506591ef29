package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewStorageProvider_Local(t *testing.T) {
	provider, err := NewStorageProvider(&StorageConfig{
		Provider: "local",
		BasePath: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewStorageProvider() error = %v", err)
	}
	if provider == nil {
		t.Fatal("NewStorageProvider() 返回 nil")
	}
}

func TestNewStorageProvider_Invalid(t *testing.T) {
	_, err := NewStorageProvider(&StorageConfig{Provider: "ftp"})
	if err == nil {
		t.Error("期望返回错误，但未返回")
	}
}

func TestLocalStorage_UploadAndDelete(t *testing.T) {
	tempDir := t.TempDir()
	provider, err := NewStorageProvider(&StorageConfig{
		Provider: "local",
		BasePath: tempDir,
		BaseURL:  "http://localhost:8080/uploads",
	})
	if err != nil {
		t.Fatalf("初始化失败: %v", err)
	}

	ctx := context.Background()
	url, err := provider.Upload(ctx, []byte("fake-png-bytes"), "thumb.png", "image/png")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/uploads/") {
		t.Errorf("URL 格式不正确: %s", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Errorf("期望保留扩展名: %s", url)
	}

	// 文件确实写入磁盘
	data, err := os.ReadFile(filepath.Join(tempDir, filepath.Base(url)))
	if err != nil {
		t.Fatalf("读取上传文件失败: %v", err)
	}
	if string(data) != "fake-png-bytes" {
		t.Error("文件内容不一致")
	}

	if err := provider.Delete(ctx, url); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(tempDir, filepath.Base(url))); !os.IsNotExist(err) {
		t.Error("期望文件已删除")
	}

	// 重复删除不报错
	if err := provider.Delete(ctx, url); err != nil {
		t.Errorf("重复 Delete() error = %v", err)
	}
}

func TestLocalStorage_MissingExtension(t *testing.T) {
	provider, err := NewStorageProvider(&StorageConfig{
		Provider: "local",
		BasePath: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("初始化失败: %v", err)
	}

	url, err := provider.Upload(context.Background(), []byte("x"), "noext", "image/jpeg")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasSuffix(url, ".jpg") {
		t.Errorf("期望缺省扩展名 .jpg: %s", url)
	}
}

func TestS3Storage_Upload(t *testing.T) {
	bucket := os.Getenv("AWS_BUCKET")
	if bucket == "" {
		t.Skip("跳过: 需要设置 AWS_BUCKET 环境变量")
	}

	provider, err := NewStorageProvider(&StorageConfig{
		Provider:  "s3",
		Bucket:    bucket,
		Region:    os.Getenv("AWS_REGION"),
		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		BasePath:  "test",
	})
	if err != nil {
		t.Fatalf("S3 初始化失败: %v", err)
	}

	ctx := context.Background()
	testData := []byte("S3 Upload Test - " + time.Now().Format(time.RFC3339))

	url, err := provider.Upload(ctx, testData, "test_upload.txt", "text/plain")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if url == "" {
		t.Error("Upload() 返回空 URL")
	}

	// 清理: 删除测试文件
	if err := provider.Delete(ctx, url); err != nil {
		t.Logf("清理失败: %v", err)
	}
}
