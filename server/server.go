// Package server exposes the token state machine over HTTP: one route per
// contract operation and query, prometheus metrics, and a websocket event
// feed. The HTTP layer authenticates nothing; callers are request-supplied
// because the host chain, not this surface, is the authenticator.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"nova_token/contract"
	"nova_token/host"
)

// Server wires the node to its HTTP routes.
type Server struct {
	node    *host.Node
	log     *logrus.Entry
	metrics *Metrics
	feed    *Feed
	router  *mux.Router
}

// New assembles the router. feed may be nil when no event feed is mounted.
func New(node *host.Node, log *logrus.Logger, metrics *Metrics, feed *Feed) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		node:    node,
		log:     log.WithField("component", "server"),
		metrics: metrics,
		feed:    feed,
		router:  mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.instrument)

	r.HandleFunc("/v1/sale/purchase", s.handlePurchase).Methods(http.MethodPost)
	r.HandleFunc("/v1/sale/refund", s.handleRefund).Methods(http.MethodPost)
	r.HandleFunc("/v1/sale/withdraw", s.handleWithdraw).Methods(http.MethodPost)
	r.HandleFunc("/v1/sale/end", s.handleEndSale).Methods(http.MethodPost)
	r.HandleFunc("/v1/sale/stage", s.handleSetStage).Methods(http.MethodPost)
	r.HandleFunc("/v1/team/claim", s.handleTeamClaim).Methods(http.MethodPost)
	r.HandleFunc("/v1/stake", s.handleStake).Methods(http.MethodPost)
	r.HandleFunc("/v1/unstake", s.handleUnstake).Methods(http.MethodPost)
	r.HandleFunc("/v1/burn", s.handleBurn).Methods(http.MethodPost)
	r.HandleFunc("/v1/governance/proposals", s.handleCreateProposal).Methods(http.MethodPost)
	r.HandleFunc("/v1/governance/proposals/{id}/vote", s.handleVote).Methods(http.MethodPost)
	r.HandleFunc("/v1/governance/proposals/{id}/execute", s.handleExecute).Methods(http.MethodPost)
	r.HandleFunc("/v1/liquidity/lock", s.handleLockLiquidity).Methods(http.MethodPost)
	r.HandleFunc("/v1/ecosystem/distribute", s.handleDistribute).Methods(http.MethodPost)

	r.HandleFunc("/v1/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/v1/allocation", s.handleAllocation).Methods(http.MethodGet)
	r.HandleFunc("/v1/balance/{addr}", s.handleBalance).Methods(http.MethodGet)
	r.HandleFunc("/v1/contribution/{addr}", s.handleContribution).Methods(http.MethodGet)
	r.HandleFunc("/v1/stake/{addr}", s.handleStakeOf).Methods(http.MethodGet)
	r.HandleFunc("/v1/governance/proposals", s.handleListProposals).Methods(http.MethodGet)
	r.HandleFunc("/v1/governance/proposals/{id}", s.handleProposal).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	if s.feed != nil {
		r.Handle("/v1/events", s.feed).Methods(http.MethodGet)
	}
}

// instrument stamps a request id and records per-route counters and latency.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		if s.metrics != nil {
			s.metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
			s.metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
		s.log.WithFields(logrus.Fields{
			"request_id": reqID,
			"method":     r.Method,
			"route":      route,
			"code":       rec.code,
			"elapsed":    time.Since(start).String(),
		}).Info("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// -----------------------------------------------------------------------------
// Request/response shapes. Amounts travel as decimal base-unit strings.
// -----------------------------------------------------------------------------

type callerRequest struct {
	Caller string `json:"caller"`
}

type purchaseRequest struct {
	Caller   string `json:"caller"`
	Paid     string `json:"paid"`
	Referrer string `json:"referrer,omitempty"`
}

type amountRequest struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

type stageRequest struct {
	Caller string `json:"caller"`
	Stage  string `json:"stage"`
}

type proposalRequest struct {
	Caller      string `json:"caller"`
	Description string `json:"description"`
}

type voteRequest struct {
	Caller  string `json:"caller"`
	InFavor bool   `json:"in_favor"`
}

type lockRequest struct {
	Caller   string `json:"caller"`
	PoolAddr string `json:"pool_addr"`
}

type distributeRequest struct {
	Caller    string `json:"caller"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type statusResponse struct {
	Stage              string `json:"stage"`
	SoftCapReached     bool   `json:"soft_cap_reached"`
	LiquidityLocked    bool   `json:"liquidity_locked"`
	TeamClaimed        bool   `json:"team_claimed"`
	TotalRaised        string `json:"total_raised"`
	TotalRefunded      string `json:"total_refunded"`
	PoolIssued         string `json:"pool_issued"`
	EcosystemRemaining string `json:"ecosystem_remaining"`
	TeamUnlockAt       int64  `json:"team_unlock_at"`
}

type allocationResponse struct {
	SalePool           string `json:"sale_pool"`
	EcosystemPool      string `json:"ecosystem_pool"`
	LiquidityPool      string `json:"liquidity_pool"`
	TeamPool           string `json:"team_pool"`
	CombinedPool       string `json:"combined_pool"`
	PoolIssued         string `json:"pool_issued"`
	Headroom           string `json:"headroom"`
	EcosystemRemaining string `json:"ecosystem_remaining"`
}

type proposalResponse struct {
	ID           uint64 `json:"id"`
	Description  string `json:"description"`
	Creator      string `json:"creator"`
	VotesFor     string `json:"votes_for"`
	VotesAgainst string `json:"votes_against"`
	CreatedAt    int64  `json:"created_at"`
	EndTime      int64  `json:"end_time"`
	Executed     bool   `json:"executed"`
	Passed       bool   `json:"passed"`
}

// -----------------------------------------------------------------------------
// Operation handlers
// -----------------------------------------------------------------------------

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !s.decode(w, r, &req) {
		return
	}
	paid, err := parseAmount(req.Paid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var referrer *contract.Address
	if req.Referrer != "" {
		a := contract.Address(req.Referrer)
		referrer = &a
	}
	err = s.node.Call(contract.Address(req.Caller), func(c *contract.Contract, ctx contract.CallCtx) error {
		return c.Purchase(ctx, paid, referrer)
	})
	s.finish(w, err, map[string]any{"ok": true})
}

func (s *Server) handleRefund(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if !s.decode(w, r, &req) {
		return
	}
	err := s.node.Call(contract.Address(req.Caller), func(c *contract.Contract, ctx contract.CallCtx) error {
		return c.Refund(ctx)
	})
	s.finish(w, err, map[string]any{"ok": true})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if !s.decode(w, r, &req) {
		return
	}
	err := s.node.Call(contract.Address(req.Caller), func(c *contract.Contract, ctx contract.CallCtx) error {
		return c.Withdraw(ctx)
	})
	s.finish(w, err, map[string]any{"ok": true})
}

func (s *Server) handleEndSale(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if !s.decode(w, r, &req) {
		return
	}
	err := s.node.Call(contract.Address(req.Caller), func(c *contract.Contract, ctx contract.CallCtx) error {
		return c.EndSale(ctx)
	})
	s.finish(w, err, map[string]any{"ok": true})
}

func (s *Server) handleSetStage(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if !s.decode(w, r, &req) {
		return
	}
	stage, ok := contract.ParseSaleStage(req.Stage)
	if !ok {
		s.writeError(w, fmt.Errorf("unknown stage %q: %w", req.Stage, contract.ErrInvalidInput))
		return
	}
	err := s.node.Call(contract.Address(req.Caller), func(c *contract.Contract, ctx contract.CallCtx) error {
		return c.SetSaleStage(ctx, stage)
	})
	s.finish(w, err, map[string]any{"ok": true, "stage": stage.String()})
}

func (s *Server) handleTeamClaim(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if !s.decode(w, r, &req) {
		return
	}
	err := s.node.Call(contract.Address(req.Caller), func(c *contract.Contract, ctx contract.CallCtx) error {
		return c.ClaimTeamTokens(ctx)
	})
	s.finish(w, err, map[string]any{"ok": true})
}

func (s *Server) handleStake(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !s.decode(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	err = s.node.Call(contract.Address(req.Caller), func(c *contract.Contract, ctx contract.CallCtx) error {
		return c.Stake(ctx, amount)
	})
	s.finish(w, err, map[string]any{"ok": true})
}

func (s *Server) handleUnstake(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if !s.decode(w, r, &req) {
		return
	}
	err := s.node.Call(contract.Address(req.Caller), func(c *contract.Contract, ctx contract.CallCtx) error {
		return c.Unstake(ctx)
	})
	s.finish(w, err, map[string]any{"ok": true})
}

func (s *Server) handleBurn(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !s.decode(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	err = s.node.Call(contract.Address(req.Caller), func(c *contract.Contract, ctx contract.CallCtx) error {
		return c.Burn(ctx, amount)
	})
	s.finish(w, err, map[string]any{"ok": true})
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	var req proposalRequest
	if !s.decode(w, r, &req) {
		return
	}
	var id uint64
	err := s.node.Call(contract.Address(req.Caller), func(c *contract.Contract, ctx contract.CallCtx) error {
		var err error
		id, err = c.CreateProposal(ctx, req.Description)
		return err
	})
	s.finish(w, err, map[string]any{"id": id})
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req voteRequest
	if !s.decode(w, r, &req) {
		return
	}
	err = s.node.Call(contract.Address(req.Caller), func(c *contract.Contract, ctx contract.CallCtx) error {
		return c.Vote(ctx, id, req.InFavor)
	})
	s.finish(w, err, map[string]any{"ok": true})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req callerRequest
	if !s.decode(w, r, &req) {
		return
	}
	var passed bool
	err = s.node.Call(contract.Address(req.Caller), func(c *contract.Contract, ctx contract.CallCtx) error {
		var err error
		passed, err = c.ExecuteProposal(ctx, id)
		return err
	})
	s.finish(w, err, map[string]any{"passed": passed})
}

func (s *Server) handleLockLiquidity(w http.ResponseWriter, r *http.Request) {
	var req lockRequest
	if !s.decode(w, r, &req) {
		return
	}
	err := s.node.Call(contract.Address(req.Caller), func(c *contract.Contract, ctx contract.CallCtx) error {
		return c.LockLiquidity(ctx, contract.Address(req.PoolAddr))
	})
	s.finish(w, err, map[string]any{"ok": true})
}

func (s *Server) handleDistribute(w http.ResponseWriter, r *http.Request) {
	var req distributeRequest
	if !s.decode(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	err = s.node.Call(contract.Address(req.Caller), func(c *contract.Contract, ctx contract.CallCtx) error {
		return c.DistributeEcosystemTokens(ctx, contract.Address(req.Recipient), amount)
	})
	s.finish(w, err, map[string]any{"ok": true})
}

// -----------------------------------------------------------------------------
// Query handlers
// -----------------------------------------------------------------------------

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	c := s.node.Contract()
	st, err := c.GetStatus()
	if err != nil {
		s.writeError(w, err)
		return
	}
	unlockAt, err := c.TeamUnlockAt()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{
		Stage:              st.Stage.String(),
		SoftCapReached:     st.SoftCapReached,
		LiquidityLocked:    st.LiquidityLocked,
		TeamClaimed:        st.TeamClaimed,
		TotalRaised:        st.TotalRaised.String(),
		TotalRefunded:      st.TotalRefunded.String(),
		PoolIssued:         st.PoolIssued.String(),
		EcosystemRemaining: st.EcosystemRemaining.String(),
		TeamUnlockAt:       unlockAt,
	})
}

func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	info, err := s.node.Contract().Allocation()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, allocationResponse{
		SalePool:           info.SalePool.String(),
		EcosystemPool:      info.EcosystemPool.String(),
		LiquidityPool:      info.LiquidityPool.String(),
		TeamPool:           info.TeamPool.String(),
		CombinedPool:       info.CombinedPool.String(),
		PoolIssued:         info.PoolIssued.String(),
		Headroom:           info.Headroom.String(),
		EcosystemRemaining: info.EcosystemRemaining.String(),
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr := contract.Address(mux.Vars(r)["addr"])
	s.writeJSON(w, http.StatusOK, map[string]string{
		"address": addr.String(),
		"balance": s.node.Contract().BalanceOf(addr).String(),
	})
}

func (s *Server) handleContribution(w http.ResponseWriter, r *http.Request) {
	addr := contract.Address(mux.Vars(r)["addr"])
	c := s.node.Contract()
	s.writeJSON(w, http.StatusOK, map[string]string{
		"address":      addr.String(),
		"contribution": c.ContributionOf(addr).String(),
		"referrer":     c.ReferrerOf(addr).String(),
	})
}

func (s *Server) handleStakeOf(w http.ResponseWriter, r *http.Request) {
	addr := contract.Address(mux.Vars(r)["addr"])
	info, err := s.node.Contract().StakeOf(addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if info == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"address": addr.String(),
			"staked":  false,
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"address": addr.String(),
		"staked":  true,
		"amount":  info.Amount.String(),
		"since":   info.Since,
	})
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	props, err := s.node.Contract().Proposals()
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]proposalResponse, 0, len(props))
	for _, p := range props {
		out = append(out, proposalView(p))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.node.Contract().ProposalByID(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, proposalView(p))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func proposalView(p *contract.Proposal) proposalResponse {
	return proposalResponse{
		ID:           p.ID,
		Description:  p.Description,
		Creator:      p.Creator.String(),
		VotesFor:     p.VotesFor.String(),
		VotesAgainst: p.VotesAgainst.String(),
		CreatedAt:    p.CreatedAt,
		EndTime:      p.EndTime,
		Executed:     p.Executed,
		Passed:       p.Passed,
	}
}

// -----------------------------------------------------------------------------
// Plumbing
// -----------------------------------------------------------------------------

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, fmt.Errorf("malformed request body: %w", contract.ErrInvalidInput))
		return false
	}
	return true
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("amount required: %w", contract.ErrInvalidInput)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("malformed amount %q: %w", s, contract.ErrInvalidInput)
	}
	return v, nil
}

func pathID(r *http.Request) (uint64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed proposal id %q: %w", raw, contract.ErrInvalidInput)
	}
	return id, nil
}

func (s *Server) finish(w http.ResponseWriter, err error, body any) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.WithError(err).Error("encode response")
	}
}

// writeError maps the error taxonomy onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	class := "internal"
	switch {
	case errors.Is(err, contract.ErrInvalidInput):
		code, class = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, contract.ErrUnauthorized):
		code, class = http.StatusForbidden, "unauthorized"
	case errors.Is(err, contract.ErrNotFound):
		code, class = http.StatusNotFound, "not_found"
	case errors.Is(err, contract.ErrStateConflict):
		code, class = http.StatusConflict, "state_conflict"
	case errors.Is(err, contract.ErrInsufficientBalance):
		code, class = http.StatusConflict, "insufficient_balance"
	case errors.Is(err, contract.ErrLimitExceeded):
		code, class = http.StatusUnprocessableEntity, "limit_exceeded"
	}
	if s.metrics != nil {
		s.metrics.OpErrors.WithLabelValues(class).Inc()
	}
	s.writeJSON(w, code, map[string]string{
		"error": err.Error(),
		"class": class,
	})
}
