package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-reservation/internal/service"
)

// WalletHandler serves balance reads and money movements.
type WalletHandler struct {
	Wallets   *service.WalletService
	Transfers *service.TransferService
}

func NewWalletHandler(wallets *service.WalletService, transfers *service.TransferService) *WalletHandler {
	return &WalletHandler{Wallets: wallets, Transfers: transfers}
}

type amountReq struct {
	Amount int64 `json:"amount"`
}

type transferReq struct {
	TransferID string `json:"transfer_id"`
	Amount     int64  `json:"amount"`
}

type walletResp struct {
	Balance    int64  `json:"balance"`
	TransferID string `json:"transfer_id"`
}

type balanceResp struct {
	Balance int64 `json:"balance"`
}

// Get handles GET /v1/wallet.
func (h *WalletHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	w, err := h.Wallets.Get(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, walletResp{Balance: w.Balance, TransferID: w.TransferID})
}

func (h *WalletHandler) Deposit(c echo.Context) error {
	return h.move(c, h.Wallets.Deposit)
}

func (h *WalletHandler) Withdraw(c echo.Context) error {
	return h.move(c, h.Wallets.Withdraw)
}

func (h *WalletHandler) move(c echo.Context, op func(context.Context, uint64, int64) (int64, error)) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req amountReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	balance, err := op(ctx, uid, req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, balanceResp{Balance: balance})
}

// Transfer handles POST /v1/wallet/transfer.
func (h *WalletHandler) Transfer(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req transferReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	receipt, err := h.Transfers.Transfer(ctx, uid, strings.TrimSpace(req.TransferID), req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, receipt)
}
