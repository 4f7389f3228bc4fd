package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"annotation-service/internal/auth"
	"annotation-service/internal/domain/asset"
	"annotation-service/internal/service"
	"annotation-service/pkg/validator"
)

const headerContentType = "Content-Type"

type BlobHandler struct {
	assets       *service.AssetService
	uploadExpiry time.Duration
}

func NewBlobHandler(assets *service.AssetService, uploadExpiry time.Duration) *BlobHandler {
	return &BlobHandler{assets: assets, uploadExpiry: uploadExpiry}
}

// blobPostReturn is the wire shape for asset mutations: where the binary
// is served from, plus the name the asset ended up with after conflict
// suffixing.
type blobPostReturn struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Post creates, updates or deletes an image or mask. The request targets
// a mask when parent-img is supplied. The uploaded file rides in the
// "image" multipart field.
func (h *BlobHandler) Post(c echo.Context) error {
	caller, err := auth.GetUserEmail(c)
	if err != nil {
		return respondAppError(c, err)
	}

	name := strings.TrimSpace(c.FormValue(paramImgName))
	if err := validator.AssetName(name); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	newName := strings.TrimSpace(c.FormValue(paramNewName))
	if err := validator.AssetName(newName); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	upload, closeUpload, err := extractUpload(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	if closeUpload != nil {
		defer closeUpload()
	}

	switch c.FormValue(paramMode) {
	case modeCreate:
		a, err := h.assets.Create(c.Request().Context(), caller, service.CreateAssetInput{
			ProjID:      c.FormValue(paramProjID),
			ParentImage: c.FormValue(paramParentImg),
			Name:        name,
			Tags:        c.FormValue(paramTags),
			Upload:      upload,
		})
		if err != nil {
			return respondAppError(c, err)
		}
		return c.JSON(http.StatusCreated, blobPostReturn{URL: blobURL(a), Name: a.Name})

	case modeUpdate:
		in := service.UpdateAssetInput{
			ProjID:      c.FormValue(paramProjID),
			ParentImage: c.FormValue(paramParentImg),
			Name:        name,
			Delete:      parseBool(c.FormValue(paramDelete)),
			NewName:     newName,
			Tags:        c.FormValue(paramTags),
			Upload:      upload,
		}
		a, err := h.assets.Update(c.Request().Context(), caller, in)
		if err != nil {
			return respondAppError(c, err)
		}
		if in.Delete {
			return respondMessage(c, http.StatusOK, msgAssetDeleted)
		}
		return c.JSON(http.StatusOK, blobPostReturn{URL: blobURL(a), Name: a.Name})

	default:
		return respondError(c, http.StatusBadRequest, msgInvalidMode)
	}
}

type maskInfo struct {
	URL  string    `json:"url"`
	Name string    `json:"name"`
	UTC  time.Time `json:"utc"`
	Tags []string  `json:"tags,omitempty"`
}

type imageInfo struct {
	URL   string     `json:"url"`
	Name  string     `json:"name"`
	UTC   time.Time  `json:"utc"`
	Tags  []string   `json:"tags,omitempty"`
	Masks []maskInfo `json:"masks,omitempty"`
}

// Get lists a project's images, optionally with their masks nested.
func (h *BlobHandler) Get(c echo.Context) error {
	caller, _ := auth.GetUserEmail(c)

	listings, err := h.assets.List(c.Request().Context(), caller, service.ListAssetsInput{
		ProjID:    c.QueryParam(paramProjID),
		WithMasks: parseBool(c.QueryParam(paramWithMasks)),
		Tag:       c.QueryParam(paramTag),
		ImageName: c.QueryParam(paramImgName),
		MaskName:  c.QueryParam(paramMaskName),
		SortImg:   c.QueryParam(paramSortImg),
		SortMask:  c.QueryParam(paramSortMask),
	})
	if err != nil {
		return respondAppError(c, err)
	}

	out := make([]imageInfo, 0, len(listings))
	for _, l := range listings {
		info := imageInfo{
			URL:  blobURL(l.Image),
			Name: l.Image.Name,
			UTC:  l.Image.LastModified,
			Tags: l.Image.Tags,
		}
		for _, m := range l.Masks {
			info.Masks = append(info.Masks, maskInfo{
				URL:  blobURL(m),
				Name: m.Name,
				UTC:  m.LastModified,
				Tags: m.Tags,
			})
		}
		out = append(out, info)
	}
	return c.JSON(http.StatusOK, out)
}

// Host streams stored binary content for an opaque blob reference,
// gated by the owning project's access check.
func (h *BlobHandler) Host(c echo.Context) error {
	caller, _ := auth.GetUserEmail(c)

	key := c.QueryParam(paramBlobKey)
	if key == "" {
		return respondError(c, http.StatusBadRequest, msgMissingBlobKey)
	}

	rc, info, err := h.assets.OpenBlob(c.Request().Context(), caller, key)
	if err != nil {
		return respondAppError(c, err)
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = fallbackContentType
	}
	return c.Stream(http.StatusOK, contentType, rc)
}

// UploadTarget mints a pre-authorized URL a client can push a binary to
// without routing the bytes through this service.
func (h *BlobHandler) UploadTarget(c echo.Context) error {
	caller, err := auth.GetUserEmail(c)
	if err != nil {
		return respondAppError(c, err)
	}

	key, url, err := h.assets.UploadTarget(c.Request().Context(), caller, c.QueryParam(paramProjID), h.uploadExpiry)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		jsonKeyURL:     url,
		jsonKeyBlobKey: key,
	})
}

// extractUpload pulls the optional multipart file out of the request.
// The returned closer is nil when no file was sent.
func extractUpload(c echo.Context) (*service.Upload, func(), error) {
	fh, err := c.FormFile(fileFieldImage)
	if err != nil {
		return nil, nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}

	up := &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(headerContentType),
		Content:     f,
	}
	return up, func() { f.Close() }, nil
}

func blobURL(a *asset.Asset) string {
	return blobHostPath + "?" + paramBlobKey + "=" + a.BlobKey
}
