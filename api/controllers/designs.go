package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tuanphm/teehouse-backend/api/responses"
	internalorders "github.com/tuanphm/teehouse-backend/internal/orders"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
	"github.com/tuanphm/teehouse-backend/pkg/logger"
	"github.com/tuanphm/teehouse-backend/pkg/types"
)

const maxDesignUploadBytes = 10 << 20

var designContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// objectStore is the asset-store slice design uploads need.
type objectStore interface {
	StoreObject(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// DesignUploader stores raw artwork and returns an opaque reference.
type DesignUploader struct {
	store objectStore
}

// NewDesignUploader wires the uploader to an object store.
func NewDesignUploader(store objectStore) *DesignUploader {
	return &DesignUploader{store: store}
}

// Store writes the artwork under a per-order key.
func (u *DesignUploader) Store(ctx context.Context, orderID uuid.UUID, contentType string, body io.Reader) (string, error) {
	ext := designContentTypes[contentType]
	name := path.Join("designs", orderID.String(), fmt.Sprintf("%s%s", uuid.NewString(), ext))
	return u.store.StoreObject(ctx, name, contentType, body)
}

// ReplaceDesign swaps the artwork on one order line. The upload is multipart:
// an image part plus a placement part describing position on the garment.
func ReplaceDesign(svc internalorders.Service, uploader *DesignUploader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || uploader == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "design service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(maxDesignUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		lineIndex, err := strconv.Atoi(strings.TrimSpace(r.FormValue("line_index")))
		if err != nil || lineIndex < 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line_index must be a non-negative integer"))
			return
		}

		var placement types.DesignPlacement
		if raw := r.FormValue("placement"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &placement); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid placement"))
				return
			}
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file required"))
			return
		}
		defer func() { _ = file.Close() }()

		contentType := header.Header.Get("Content-Type")
		if _, ok := designContentTypes[contentType]; !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unsupported image type").
				WithDetails(map[string]any{"content_type": contentType}))
			return
		}

		imageRef, err := uploader.Store(r.Context(), orderID, contentType, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store design artwork"))
			return
		}

		design := types.CustomDesign{
			ImageRef:  imageRef,
			Placement: placement,
		}
		if err := design.Validate(); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid design"))
			return
		}

		view, err := svc.ReplaceDesign(r.Context(), internalorders.ReplaceDesignInput{
			OrderID:     orderID,
			LineIndex:   lineIndex,
			ActorUserID: actorID,
			ActorRole:   role,
			Design:      design,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
