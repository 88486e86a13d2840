package admission

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"chainsync/internal/audit"
	"chainsync/internal/auth"
	"chainsync/internal/featureflag"
	"chainsync/internal/platform/metrics"
	dErrors "chainsync/pkg/domain-errors"
	"chainsync/pkg/platform/httputil"
	"chainsync/pkg/requestcontext"
)

// OriginChecker answers the network-origin membership test.
type OriginChecker interface {
	IsAllowed(ctx context.Context, origin string) (bool, error)
}

// CredentialVerifier validates a presented identity. The gate treats
// auth.ErrUnknownIdentity and auth.ErrBadSecret identically in the
// caller-visible response.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, secret string) (auth.Principal, error)
}

// FlagSource provides the flag snapshot route resolution runs against.
type FlagSource interface {
	Snapshot(ctx context.Context) (featureflag.Snapshot, error)
}

// Gate orchestrates the admission pipeline. One Gate serves all requests;
// per-request state lives on the stack of each call.
type Gate struct {
	origins   OriginChecker
	verifier  CredentialVerifier
	flags     FlagSource
	registry  *Registry
	publisher audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewGate constructs the admission gate.
func NewGate(origins OriginChecker, verifier CredentialVerifier, flags FlagSource, registry *Registry, publisher audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Gate {
	if publisher == nil {
		publisher = audit.NopPublisher{}
	}
	return &Gate{
		origins:   origins,
		verifier:  verifier,
		flags:     flags,
		registry:  registry,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("chainsync/admission"),
	}
}

// CheckOrigin runs the first pipeline step. Returns a generic forbidden error
// on rejection; the origin category goes to the audit trail only.
func (g *Gate) CheckOrigin(ctx context.Context) error {
	origin := requestcontext.ClientIP(ctx)
	allowed, err := g.origins.IsAllowed(ctx, origin)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "origin check failed")
	}
	if !allowed {
		g.reject(ctx, RejectedByOrigin, map[string]string{"origin": origin})
		return dErrors.New(dErrors.CodeForbidden, "forbidden")
	}
	return nil
}

// VerifyCredentials runs origin check then credential check, in that order.
// The origin step is unconditional: a caller outside the allow-list never
// reaches the verifier, regardless of credential validity. UnknownIdentity
// and BadSecret collapse to one generic auth failure; AccountLocked is
// surfaced as a lockout without confirming the identity exists.
func (g *Gate) VerifyCredentials(ctx context.Context, username, secret string) (auth.Principal, error) {
	ctx, span := g.tracer.Start(ctx, "admission.verify_credentials")
	defer span.End()
	start := time.Now()

	if err := g.CheckOrigin(ctx); err != nil {
		span.SetAttributes(attribute.String("admission.outcome", RejectedByOrigin.String()))
		return auth.Principal{}, err
	}

	principal, err := g.verifier.Verify(ctx, username, secret)
	if err != nil {
		span.SetAttributes(attribute.String("admission.outcome", RejectedByCredential.String()))
		g.reject(ctx, RejectedByCredential, map[string]string{"username": username})
		switch {
		case errors.Is(err, auth.ErrAccountLocked):
			return auth.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "too many failed attempts, try again later")
		case errors.Is(err, auth.ErrUnknownIdentity), errors.Is(err, auth.ErrBadSecret):
			return auth.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
		default:
			return auth.Principal{}, err
		}
	}

	span.SetAttributes(attribute.String("admission.outcome", Allowed.String()))
	g.observe(Allowed, time.Since(start))
	return principal, nil
}

// OriginMiddleware enforces the origin step on every inbound request, before
// any other handler or middleware that could disclose identity information.
func (g *Gate) OriginMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.CheckOrigin(r.Context()); err != nil {
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GatedHandler serves the flag-gated API surface. Resolution consults a
// fresh flag snapshot per request, so toggles take effect on the next
// request with no restart and no caching staleness.
func (g *Gate) GatedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx, span := g.tracer.Start(ctx, "admission.resolve_route",
			trace.WithAttributes(attribute.String("http.route", r.URL.Path)))
		defer span.End()
		start := time.Now()

		snap, err := g.flags.Snapshot(ctx)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "flag snapshot failed"))
			return
		}

		handler, found, gated := g.registry.Resolve(r.URL.Path, snap)
		if !found {
			if gated {
				// Audit-only: the response below is identical to a plain 404.
				span.SetAttributes(attribute.String("admission.outcome", RejectedByFeature.String()))
				g.reject(ctx, RejectedByFeature, map[string]string{"path": r.URL.Path})
			}
			httputil.WriteNotFound(w)
			return
		}

		span.SetAttributes(attribute.String("admission.outcome", Allowed.String()))
		g.observe(Allowed, time.Since(start))
		handler.ServeHTTP(w, r.WithContext(ctx))
	})
}

// reject records the decision internally. The caller-visible response never
// carries the category; audit and metrics do.
func (g *Gate) reject(ctx context.Context, decision Decision, details map[string]string) {
	g.observe(decision, 0)
	g.logger.WarnContext(ctx, "admission rejected",
		"request_id", requestcontext.RequestID(ctx),
		"reason", decision.String(),
		"client_ip", requestcontext.ClientIP(ctx),
	)

	event := audit.NewEvent(audit.EventAdmissionRejected, requestcontext.Now(ctx))
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.Details["reason"] = decision.String()
	for k, v := range details {
		event.Details[k] = v
	}
	g.publisher.Publish(ctx, event)
}

func (g *Gate) observe(decision Decision, elapsed time.Duration) {
	if g.metrics == nil {
		return
	}
	g.metrics.AdmissionDecisions.WithLabelValues(decision.String()).Inc()
	if elapsed > 0 {
		g.metrics.AdmissionDuration.Observe(elapsed.Seconds())
	}
}
