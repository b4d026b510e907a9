// Package http hosts the inbound SMS webhook and the phone-verification
// endpoints around the interpreter pipeline. A webhook request is always
// answered 200 with a TwiML envelope; failures ride the reply text, so
// the transport has something to deliver to the sender either way.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"smsledger/internal/command"
	"smsledger/internal/core"
	"smsledger/internal/dispatch"
	"smsledger/internal/ledger"
	"smsledger/internal/log"
	"smsledger/internal/middleware/ratelimit"
	"smsledger/internal/middleware/security"
	"smsledger/internal/middleware/trace"
	"smsledger/internal/reply"
	"smsledger/internal/verify"
)

// dispatchTimeout bounds one message's trip through parsing, storage and
// reply rendering. The interpreter core carries no timeouts of its own;
// the deadline lives here at the edge.
const dispatchTimeout = 10 * time.Second

type Server struct {
	http.Server

	store      ledger.Store
	parser     *command.Parser
	dispatcher *dispatch.Dispatcher
	verifier   *verify.Service
	limiter    *ratelimit.Limiter
	detector   *security.Detector
	logger     *log.Logger

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
// perMinute caps how many messages a single sender can submit per minute.
func NewServer(addr string, store ledger.Store, parser *command.Parser, dispatcher *dispatch.Dispatcher, verifier *verify.Service, perMinute int, logger *log.Logger) *Server {
	s := &Server{
		store:      store,
		parser:     parser,
		dispatcher: dispatcher,
		verifier:   verifier,
		limiter:    ratelimit.NewLimiter(ratelimit.Config{PerMinute: perMinute}),
		detector:   security.NewDetector(),
		logger:     logger.WithComponent(log.ComponentHTTP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/hooks/sms", s.handleIncomingSMS)
	mux.HandleFunc("/verify/start", s.handleVerifyStart)
	mux.HandleFunc("/verify/confirm", s.handleVerifyConfirm)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	traceMW := trace.NewMiddleware(s.detector.ExtractClientIP)

	// Outermost to innermost: base logger, request id, id-tagged context
	// logger, access log, scanner detection, security headers, routes.
	var handler http.Handler = mux
	handler = headers.Middleware(handler)
	handler = s.logSuspicious(handler)
	handler = log.AccessLog(handler)
	handler = log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = traceMW.Middleware(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter's janitor along with the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// logSuspicious counts and logs scanner-looking requests. Detection
// never blocks: the webhook answers whatever arrives.
func (s *Server) logSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).WarnContext(r.Context(), "suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// handleIncomingSMS runs one inbound message through the pipeline:
// resolve the sender's account, parse the text against the account's
// categories, dispatch, and wrap the reply. Unlinked phones, rate
// limiting and storage trouble all still produce a 200 TwiML reply.
func (s *Server) handleIncomingSMS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dispatchTimeout)
	defer cancel()

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.logger.ErrorContext(ctx, "webhook body unreadable", log.FieldError, err)
		writeTwiML(w, reply.SomethingWentWrong())
		return
	}

	from := p.Get("From")
	body := p.Get("Body")
	messageID := p.Get("MessageSid")
	if messageID == "" {
		messageID = uuid.NewString()
	}

	logger := log.FromContext(ctx).WithComponent(log.ComponentHTTP).With(
		log.FieldMessageID, messageID,
		log.FieldPhone, log.MaskPhone(from))

	normalized := core.NormalizePhone(from)
	if !s.limiter.Allow("sms:" + normalized) {
		logger.WarnContext(ctx, "sender over rate limit")
		writeTwiML(w, reply.RateLimited())
		return
	}

	account, err := s.store.ResolveAccount(ctx, from)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			logger.InfoContext(ctx, "message from unlinked phone")
			writeTwiML(w, reply.PhoneNotLinked())
			return
		}
		logger.ErrorContext(ctx, "account resolution failed", log.FieldError, err)
		writeTwiML(w, reply.SomethingWentWrong())
		return
	}

	categories, err := s.store.ListCategories(ctx, account.ID)
	if err != nil {
		logger.ErrorContext(ctx, "category list failed",
			log.FieldError, err, log.FieldAccountID, account.ID)
		writeTwiML(w, reply.SomethingWentWrong())
		return
	}

	cmd := s.parser.Parse(body, categories)
	text := s.dispatcher.Dispatch(ctx, cmd, account)

	logger.InfoContext(ctx, "message answered",
		log.FieldAccountID, account.ID,
		log.FieldIntent, string(cmd.Kind),
		log.FieldReplyLen, len(text))
	writeTwiML(w, text)
}

// handleVerifyStart generates a verification code for a phone and holds
// it until the TTL runs out. Delivery is out of scope; the code is
// logged for whoever operates the stack to pass along.
func (s *Server) handleVerifyStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if !s.limiter.Allow("verify:" + s.detector.ExtractClientIP(r)) {
		writeJSONError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	phone := p.Get("phone")
	code, err := s.verifier.StartVerification(r.Context(), phone)
	if err != nil {
		if errors.Is(err, core.ErrEmptyPhone) {
			writeJSONError(w, http.StatusBadRequest, "phone is required")
			return
		}
		s.logger.ErrorContext(r.Context(), "verification start failed", log.FieldError, err)
		writeJSONError(w, http.StatusInternalServerError, "could not start verification")
		return
	}

	// No SMS delivery in this repo; the log line is how the code reaches
	// the delivery collaborator.
	s.logger.InfoContext(r.Context(), "verification code issued",
		log.FieldPhone, log.MaskPhone(phone),
		"code", code)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "verification started"})
}

// handleVerifyConfirm checks a code and links the phone: to the given
// account when account_id is set, to a freshly created one otherwise.
// The code is consumed by the check, so a miss means starting over.
func (s *Server) handleVerifyConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if !s.limiter.Allow("verify:" + s.detector.ExtractClientIP(r)) {
		writeJSONError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	phone := p.Get("phone")
	code := p.Get("code")
	accountID, err := p.GetInt64("account_id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "account_id must be a number")
		return
	}
	if phone == "" || code == "" {
		writeJSONError(w, http.StatusBadRequest, "phone and code are required")
		return
	}

	account, err := s.verifier.Confirm(r.Context(), phone, code, accountID)
	switch {
	case err == nil:
	case errors.Is(err, verify.ErrCodeMismatch):
		writeJSONError(w, http.StatusNotFound, "verification code invalid or expired")
		return
	case errors.Is(err, ledger.ErrPhoneInUse):
		writeJSONError(w, http.StatusConflict, "phone already linked to an account")
		return
	case errors.Is(err, ledger.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "account not found")
		return
	case errors.Is(err, core.ErrEmptyPhone):
		writeJSONError(w, http.StatusBadRequest, "phone is required")
		return
	default:
		s.logger.ErrorContext(r.Context(), "verification confirm failed", log.FieldError, err)
		writeJSONError(w, http.StatusInternalServerError, "could not confirm verification")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": account.ID,
		"phone":      account.Phone,
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
