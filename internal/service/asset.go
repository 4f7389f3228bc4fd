package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"annotation-service/internal/access"
	"annotation-service/internal/blob"
	"annotation-service/internal/domain/asset"
	"annotation-service/internal/hierarchy"
	"annotation-service/internal/repository"
	apperrors "annotation-service/pkg/errors"
)

const (
	errMissingUpload    = "form submitted without a file"
	errEmptyUpload      = "uploaded file is empty"
	errMissingAssetName = "asset name must be provided"
)

// Upload carries one file out of a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// AssetService implements image and mask operations with one shared
// algorithm. A request targets a mask when ParentImage is set, an image
// otherwise.
type AssetService struct {
	assets    repository.AssetRepository
	blobs     blob.Store
	access    *access.Controller
	hierarchy *hierarchy.Hierarchy
	log       *logrus.Logger
}

func NewAssetService(assets repository.AssetRepository, blobs blob.Store, ac *access.Controller, h *hierarchy.Hierarchy, log *logrus.Logger) *AssetService {
	return &AssetService{assets: assets, blobs: blobs, access: ac, hierarchy: h, log: log}
}

type CreateAssetInput struct {
	ProjID      string
	ParentImage string
	Name        string
	Tags        string
	Upload      *Upload
}

// Create stores the upload and registers the asset under its parent.
// Images require ownership; masks only editorship. A name collision is
// resolved by suffixing, never rejected.
func (s *AssetService) Create(ctx context.Context, caller string, in CreateAssetInput) (*asset.Asset, error) {
	kind, isMask := targetKind(in.ParentImage)

	p, err := s.access.Authorize(ctx, in.ProjID, caller, isMask, false)
	if err != nil {
		return nil, err
	}

	var parentID *uuid.UUID
	if isMask {
		parent, err := s.hierarchy.Resolve(ctx, asset.KindImage, p.ID, nil, in.ParentImage)
		if err != nil {
			return nil, err
		}
		parentID = &parent.ID
	}

	if in.Upload == nil {
		return nil, apperrors.InvalidArgument(errMissingUpload)
	}
	ext, err := asset.CheckUploadType(kind, in.Upload.Filename, in.Upload.ContentType)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	name := in.Name
	if name == "" {
		name = untitledPrefix + now.Format(time.RFC3339Nano)
	}

	key, err := s.storeUpload(ctx, in.Upload)
	if err != nil {
		return nil, err
	}

	finalName, err := s.hierarchy.EnsureUniqueName(ctx, kind, p.ID, parentID, name, now)
	if err != nil {
		return nil, err
	}

	a := &asset.Asset{
		ProjectID:     p.ID,
		ParentID:      parentID,
		Kind:          kind,
		Name:          finalName,
		BlobKey:       key,
		FileExtension: ext,
		Tags:          asset.ParseTags(in.Tags),
		LastModified:  now,
	}

	if err := s.assets.Put(ctx, a, now); err != nil {
		return nil, err
	}
	return a, nil
}

type UpdateAssetInput struct {
	ProjID      string
	ParentImage string
	Name        string
	Delete      bool
	NewName     string
	Tags        string
	Upload      *Upload
}

// Update patches or deletes an existing asset. Deletion requires
// ownership and cascades to an image's masks. A mask's binary may be
// replaced by a fresh upload; an image's binary is immutable, so an
// upload on an image update is discarded.
func (s *AssetService) Update(ctx context.Context, caller string, in UpdateAssetInput) (*asset.Asset, error) {
	kind, isMask := targetKind(in.ParentImage)
	if in.Name == "" {
		return nil, apperrors.InvalidArgument(errMissingAssetName)
	}

	p, err := s.access.Authorize(ctx, in.ProjID, caller, !in.Delete, false)
	if err != nil {
		return nil, err
	}

	var parentID *uuid.UUID
	if isMask {
		parent, err := s.hierarchy.Resolve(ctx, asset.KindImage, p.ID, nil, in.ParentImage)
		if err != nil {
			return nil, err
		}
		parentID = &parent.ID
	}

	a, err := s.hierarchy.Resolve(ctx, kind, p.ID, parentID, in.Name)
	if err != nil {
		return nil, err
	}

	if in.Delete {
		if isMask {
			err = s.hierarchy.DeleteMask(ctx, a)
		} else {
			err = s.hierarchy.DeleteImageTree(ctx, a)
		}
		if err != nil {
			return nil, err
		}
		return a, nil
	}

	now := time.Now().UTC()

	if in.Upload != nil && isMask {
		ext, err := asset.CheckUploadType(kind, in.Upload.Filename, in.Upload.ContentType)
		if err != nil {
			return nil, err
		}
		key, err := s.storeUpload(ctx, in.Upload)
		if err != nil {
			return nil, err
		}
		if a.BlobKey != "" {
			if err := s.blobs.Delete(ctx, a.BlobKey); err != nil {
				s.log.WithError(err).WithField("blobkey", a.BlobKey).
					Warn("failed to delete replaced mask blob")
			}
		}
		a.BlobKey = key
		a.FileExtension = ext
	}

	if tags := asset.ParseTags(in.Tags); tags != nil {
		a.Tags = tags
	}

	if in.NewName != "" && in.NewName != a.Name {
		finalName, err := s.hierarchy.EnsureUniqueName(ctx, kind, p.ID, parentID, in.NewName, now)
		if err != nil {
			return nil, err
		}
		a.Name = finalName
	}

	a.LastModified = now
	if err := s.assets.Put(ctx, a, now); err != nil {
		return nil, err
	}
	return a, nil
}

type ListAssetsInput struct {
	ProjID    string
	WithMasks bool
	Tag       string
	ImageName string
	MaskName  string
	SortImg   string
	SortMask  string
}

// ImageListing pairs an image with its masks. Masks is nil unless the
// listing was requested with masks.
type ImageListing struct {
	Image *asset.Asset
	Masks []*asset.Asset
}

// List returns the project's images, optionally each with its masks.
// Filtering by mask name implies a with-masks listing, and when masks
// are listed the tag filter applies to masks rather than images.
func (s *AssetService) List(ctx context.Context, caller string, in ListAssetsInput) ([]*ImageListing, error) {
	p, err := s.access.Authorize(ctx, in.ProjID, caller, true, true)
	if err != nil {
		return nil, err
	}

	withMasks := in.WithMasks || in.MaskName != ""

	imgOpts := repository.AssetListOptions{
		Name: in.ImageName,
		Sort: repository.ParseSortOrder(in.SortImg),
	}
	if !withMasks {
		imgOpts.Tag = in.Tag
	}

	images, err := s.assets.ListByParent(ctx, asset.KindImage, p.ID, nil, imgOpts)
	if err != nil {
		return nil, err
	}

	listings := make([]*ImageListing, 0, len(images))
	for _, img := range images {
		listing := &ImageListing{Image: img}
		if withMasks {
			maskOpts := repository.AssetListOptions{
				Tag:  in.Tag,
				Name: in.MaskName,
				Sort: repository.ParseSortOrder(in.SortMask),
			}
			masks, err := s.assets.ListByParent(ctx, asset.KindMask, p.ID, &img.ID, maskOpts)
			if err != nil {
				return nil, err
			}
			listing.Masks = masks
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// OpenBlob streams a stored binary after checking the caller may view
// the owning project. Viewing only needs editor or public access.
func (s *AssetService) OpenBlob(ctx context.Context, caller, blobKey string) (io.ReadCloser, *blob.Info, error) {
	a, err := s.assets.FindByBlobKey(ctx, blobKey)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.access.Authorize(ctx, a.ProjectID.String(), caller, true, true); err != nil {
		return nil, nil, err
	}

	return s.blobs.Open(ctx, blobKey)
}

// UploadTarget mints a blob key and a pre-authorized URL a client can
// push the binary to directly.
func (s *AssetService) UploadTarget(ctx context.Context, caller, projID string, expiry time.Duration) (key, url string, err error) {
	if _, err := s.access.Authorize(ctx, projID, caller, true, false); err != nil {
		return "", "", err
	}

	key = blob.NewKey()
	url, err = s.blobs.UploadURL(ctx, key, expiry)
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

// storeUpload writes the upload under a fresh key, rejecting empty
// content. A zero-byte write is rolled back before rejecting.
func (s *AssetService) storeUpload(ctx context.Context, up *Upload) (string, error) {
	key := blob.NewKey()
	n, err := s.blobs.Put(ctx, key, up.Content, up.ContentType)
	if err != nil {
		return "", err
	}
	if n == 0 {
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.log.WithError(err).WithField("blobkey", key).
				Warn("failed to delete empty blob")
		}
		return "", apperrors.InvalidArgument(errEmptyUpload)
	}
	return key, nil
}

func targetKind(parentImage string) (asset.Kind, bool) {
	if parentImage != "" {
		return asset.KindMask, true
	}
	return asset.KindImage, false
}
