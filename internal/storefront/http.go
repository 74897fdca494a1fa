package storefront

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/pkg/kit"
)

type Server struct {
	Carts    *Carts
	Sessions *SessionMaker
	Log      *zap.Logger
}

type sessionResp struct {
	Token string `json:"token"`
}

type cartResp struct {
	Items []cart.LineItem `json:"items"`
}

type addReq struct {
	ProductID int64 `json:"product_id"`
}

type updateReq struct {
	Amount int `json:"amount"`
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	tok, id, err := s.Sessions.New()
	if err != nil {
		s.logger().Error("issue session failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	s.logger().Info("session started", zap.String("session_id", id))
	kit.WriteJSON(w, http.StatusCreated, sessionResp{Token: tok})
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cartFor(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartResp{Items: c.Items()})
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req addReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if req.ProductID <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "product_id required", nil)
		return
	}

	c, ok := s.cartFor(w, r)
	if !ok {
		return
	}
	if err := c.AddItem(r.Context(), req.ProductID); err != nil {
		s.writeCartError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartResp{Items: c.Items()})
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req updateReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	c, ok := s.cartFor(w, r)
	if !ok {
		return
	}
	if err := c.UpdateItemAmount(r.Context(), id, req.Amount); err != nil {
		s.writeCartError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartResp{Items: c.Items()})
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	c, ok := s.cartFor(w, r)
	if !ok {
		return
	}
	if err := c.RemoveItem(r.Context(), id); err != nil {
		s.writeCartError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartResp{Items: c.Items()})
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cartFor(w, r)
	if !ok {
		return
	}
	if err := c.Clear(r.Context()); err != nil {
		s.logger().Error("clear cart failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartResp{Items: c.Items()})
}

func (s *Server) cartFor(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	id, ok := SessionFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no session", nil)
		return nil, false
	}

	c, err := s.Carts.Get(r.Context(), id)
	if err != nil {
		s.logger().Error("open cart failed", zap.Error(err), zap.String("session_id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return nil, false
	}
	return c, true
}

// writeCartError turns a rejected operation into its notification. The
// status tells the client why; the message is what it shows the shopper.
func (s *Server) writeCartError(w http.ResponseWriter, r *http.Request, err error) {
	kind, ok := cart.KindOf(err)
	if !ok {
		s.logger().Error("cart operation failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case kind == cart.KindOutOfStock:
		status = http.StatusConflict
	case errors.Is(err, cart.ErrNotInCart), errors.Is(err, cart.ErrAPINotFound):
		status = http.StatusNotFound
	case errors.Is(err, cart.ErrAPIUnavailable), errors.Is(err, cart.ErrAPIBadStatus):
		status = http.StatusBadGateway
	}

	kit.WriteError(w, r, status, cart.Message(kind), map[string]any{"kind": kind})
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "productID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", map[string]any{"product_id": raw})
		return 0, false
	}
	return id, true
}
