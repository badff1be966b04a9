package cart

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/halcart/api/hal"
	"github.com/angelmondragon/halcart/api/responses"
	"github.com/angelmondragon/halcart/api/validators"
	cartsvc "github.com/angelmondragon/halcart/internal/cart"
	"github.com/angelmondragon/halcart/internal/conditional"
	pkgerrors "github.com/angelmondragon/halcart/pkg/errors"
	"github.com/angelmondragon/halcart/pkg/logger"
)

// View holds what every representation response needs.
type View struct {
	Renderer     hal.Renderer
	CacheControl string
}

// CartCreate stores a new cart built from the posted items.
func CartCreate(svc cartsvc.Service, view View, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload CreateCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateCart(r.Context(), payload.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, rejection(err))
			return
		}

		responses.WriteHAL(w, http.StatusOK, conditional.Weak(created.Version()), view.CacheControl, view.Renderer.Cart(created))
	}
}

// CartGet serves GET and HEAD, honouring If-None-Match.
func CartGet(svc cartsvc.Service, view View, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := svc.GetCart(r.Context(), chi.URLParam(r, "id"), ifNoneMatch(r), r.Method == http.MethodHead)
		writeResult(w, r, logg, view, res, nil, view.Renderer.Cart)
	}
}

func CartDelete(svc cartsvc.Service, view View, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.DeleteCart(r.Context(), chi.URLParam(r, "id"), ifMatch(r))
		writeResult(w, r, logg, view, res, err, view.Renderer.Cart)
	}
}

// CartReplaceItems swaps the cart's whole item list.
func CartReplaceItems(svc cartsvc.Service, view View, logg *logger.Logger) http.HandlerFunc {
	return cartItemsHandler(svc.ReplaceItems, view, logg)
}

// CartAddItems appends the posted items to the cart.
func CartAddItems(svc cartsvc.Service, view View, logg *logger.Logger) http.HandlerFunc {
	return cartItemsHandler(svc.AddItems, view, logg)
}

type cartItemsMutation func(ctx context.Context, id, ifMatch string, items []cartsvc.ItemInput) (conditional.Result[cartsvc.Cart], error)

func cartItemsHandler(mutate cartItemsMutation, view View, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload CartItemsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res, err := mutate(r.Context(), chi.URLParam(r, "id"), ifMatch(r), *payload.Items)
		writeResult(w, r, logg, view, res, err, view.Renderer.Cart)
	}
}

func ItemGet(svc cartsvc.Service, view View, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := svc.GetItem(r.Context(), chi.URLParam(r, "id"), ifNoneMatch(r), r.Method == http.MethodHead)
		writeResult(w, r, logg, view, res, nil, view.Renderer.Item)
	}
}

func ItemDelete(svc cartsvc.Service, view View, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.DeleteItem(r.Context(), chi.URLParam(r, "id"), ifMatch(r))
		writeResult(w, r, logg, view, res, err, view.Renderer.Item)
	}
}

// ItemPut replaces the item's title and quantity.
func ItemPut(svc cartsvc.Service, view View, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload ItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res, err := svc.PutItem(r.Context(), chi.URLParam(r, "id"), ifMatch(r), *payload.Item)
		writeResult(w, r, logg, view, res, err, view.Renderer.Item)
	}
}

// ItemPatch overwrites only the fields present in the posted item.
func ItemPatch(svc cartsvc.Service, view View, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload ItemPatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res, err := svc.PatchItem(r.Context(), chi.URLParam(r, "id"), ifMatch(r), *payload.Item)
		writeResult(w, r, logg, view, res, err, view.Renderer.Item)
	}
}

// writeResult maps a coordinator outcome onto the response.
func writeResult[T any, D any](w http.ResponseWriter, r *http.Request, logg *logger.Logger, view View, res conditional.Result[T], err error, render func(T) D) {
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	switch res.Outcome {
	case conditional.OutcomeDeliver:
		if res.Entity == nil {
			responses.WriteHead(w, res.ETag, view.CacheControl)
			return
		}
		responses.WriteHAL(w, http.StatusOK, res.ETag, view.CacheControl, render(*res.Entity))
	case conditional.OutcomeNotModified:
		responses.WriteNotModified(w, res.ETag)
	case conditional.OutcomeDeleted:
		responses.WriteEmpty(w, http.StatusNoContent)
	case conditional.OutcomeNotFound:
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "not found"))
	case conditional.OutcomePreconditionFailed:
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodePreconditionFailed, "precondition failed"))
	case conditional.OutcomeUnprocessable:
		responses.WriteError(r.Context(), logg, w, rejection(res.Err))
	default:
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "unhandled outcome "+res.Outcome.String()))
	}
}

// rejection exposes item violations as a 422; anything else passes through.
func rejection(err error) error {
	var verr *cartsvc.ValidationError
	if errors.As(err, &verr) {
		return pkgerrors.Wrap(pkgerrors.CodeUnprocessable, err, "item validation failed").WithDetails(verr.Violations)
	}
	return err
}
