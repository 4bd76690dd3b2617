package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"socialnet/internal/config"
	domain "socialnet/internal/model"
)

// MediaService is the blob store: it accepts a file and returns a public
// URL or fails. Backed by Cloudflare R2 through the S3 API. Record writes
// only happen after an upload here has succeeded.
type MediaService struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
}

// NewMediaService constructs an S3-compatible client for Cloudflare R2.
func NewMediaService(ctx context.Context, cfg *config.Config) (*MediaService, error) {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" || cfg.R2PublicURL == "" {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &MediaService{
		s3Client:  s3Client,
		bucket:    cfg.R2BucketName,
		publicURL: strings.TrimSuffix(cfg.R2PublicURL, "/"),
	}, nil
}

// UploadProfilePicture enforces size/type, normalizes to a 200x200 JPEG,
// and uploads to R2.
func (s *MediaService) UploadProfilePicture(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.UploadResult, error) {
	data, _, err := readAndValidateImage(file, header, domain.MaxImageSizeBytes)
	if err != nil {
		return nil, err
	}

	jpegBytes, err := resizeToJPEG(data, domain.AvatarWidth, domain.AvatarHeight, 85)
	if err != nil {
		return nil, err
	}

	return s.upload(ctx, domain.AvatarFolder, jpegBytes, domain.ContentTypeJPEG)
}

// UploadCoverImage validates and uploads a cover image without resizing.
func (s *MediaService) UploadCoverImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.UploadResult, error) {
	data, contentType, err := readAndValidateImage(file, header, domain.MaxImageSizeBytes)
	if err != nil {
		return nil, err
	}

	return s.upload(ctx, domain.CoverFolder, data, contentType)
}

// UploadPostImage validates and uploads a post image without resizing.
func (s *MediaService) UploadPostImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.UploadResult, error) {
	data, contentType, err := readAndValidateImage(file, header, domain.MaxImageSizeBytes)
	if err != nil {
		return nil, err
	}

	return s.upload(ctx, domain.PostImageFolder, data, contentType)
}

func (s *MediaService) upload(ctx context.Context, folder string, body []byte, contentType string) (*domain.UploadResult, error) {
	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), extensionFor(contentType))

	if err := s.putObject(ctx, key, body, contentType, domain.ImageCacheControl); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", s.publicURL, key)
	return &domain.UploadResult{URL: url, Key: key}, nil
}

// readAndValidateImage loads the upload into memory with size and type checks.
func readAndValidateImage(file multipart.File, header *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if header.Size > maxSize {
		return nil, "", domain.ErrFileTooLarge
	}

	limitedReader := io.LimitReader(file, maxSize+1)
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", domain.ErrFileTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !domain.IsAllowedImageType(contentType) {
		return nil, "", domain.ErrInvalidImageType
	}

	return data, contentType, nil
}

// resizeToJPEG centers/crops to target size and encodes as JPEG.
func resizeToJPEG(data []byte, width, height, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case domain.ContentTypePNG:
		return ".png"
	case domain.ContentTypeGIF:
		return ".gif"
	case domain.ContentTypeWebP:
		return ".webp"
	default:
		return domain.ImageExt
	}
}

// putObject uploads bytes to R2 with metadata.
func (s *MediaService) putObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to r2: %w", err)
	}
	return nil
}

// DeleteByURL removes the object a public URL points at. URLs outside the
// configured public prefix are left alone.
func (s *MediaService) DeleteByURL(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok {
		return nil
	}
	return s.DeleteObject(ctx, key)
}

// DeleteObject removes an object by key.
func (s *MediaService) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from r2: %w", err)
	}
	return nil
}
