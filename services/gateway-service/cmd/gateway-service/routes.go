package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/md-rashed-zaman/staybook/libs/auth"
	"github.com/md-rashed-zaman/staybook/libs/hotelrpc"
	"github.com/md-rashed-zaman/staybook/libs/httpx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// publicRoutes are reachable without a token: browsing hotels and checking
// dates. Everything else under /api/v1 needs a verified identity.
var publicRoutes = []string{
	"GET /api/v1/hotels",
	"GET /api/v1/hotels/{hotelID}",
	"GET /api/v1/rooms/{roomID}/booked-dates",
	"GET /api/v1/rooms/{roomID}/availability",
}

// routeDeps are the upstreams the gateway talks to. Availability is nil when
// no gRPC address is configured; those checks are then proxied like the rest.
type routeDeps struct {
	hotelURL     *url.URL
	availability *hotelrpc.Client
	verifier     verifier
	logger       *slog.Logger
}

func registerRoutes(mux *http.ServeMux, deps routeDeps) {
	hotelProxy := httputil.NewSingleHostReverseProxy(deps.hotelURL)
	hotelProxy.Transport = otelhttp.NewTransport(http.DefaultTransport)

	public := http.NewServeMux()
	known := make(map[string]bool, len(publicRoutes))
	for _, pattern := range publicRoutes {
		public.Handle(pattern, http.NotFoundHandler())
		known[pattern] = true
	}
	// Handler also reports redirect targets as patterns, so only exact
	// registrations count.
	isPublic := func(r *http.Request) bool {
		_, pattern := public.Handler(r)
		return known[pattern]
	}

	mux.Handle("/api/v1/", requireAuth(hotelProxy, deps.verifier, isPublic))
	if deps.availability != nil {
		mux.Handle("GET /api/v1/rooms/{roomID}/availability",
			requireAuth(availabilityHandler(deps.availability, deps.logger), deps.verifier, isPublic))
	}
}

func availabilityHandler(client *hotelrpc.Client, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		res, err := client.CheckAvailability(r.Context(), hotelrpc.AvailabilityRequest{
			RoomID:    r.PathValue("roomID"),
			StartDate: q.Get("start_date"),
			EndDate:   q.Get("end_date"),
		})
		if err != nil {
			switch status.Code(err) {
			case codes.InvalidArgument:
				http.Error(w, status.Convert(err).Message(), http.StatusBadRequest)
			case codes.NotFound:
				http.Error(w, "not found", http.StatusNotFound)
			default:
				logger.Error("availability rpc failed", "room_id", r.PathValue("roomID"), "request_id", httpx.RequestIDFromContext(r.Context()), "err", err)
				http.Error(w, "service temporarily unavailable", http.StatusServiceUnavailable)
			}
			return
		}
		httpx.WriteJSON(w, http.StatusOK, res)
	}
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

var errNoVerifier = errors.New("no token verifier configured")

// verifier checks identity-provider session tokens: RS256 against the JWKS
// endpoint when configured, HS256 with the shared secret otherwise.
type verifier struct {
	secret string
	jwks   *auth.JWKSClient
}

func (v verifier) verify(ctx context.Context, token string) (*auth.Claims, error) {
	header, err := auth.ParseHeader(token)
	if err != nil {
		return nil, err
	}
	switch {
	case header.Alg == "RS256" && v.jwks != nil:
		pub, err := v.jwks.Get(ctx, header.Kid)
		if err != nil {
			return nil, err
		}
		return auth.VerifyRS256(token, pub)
	case header.Alg == "HS256" && v.secret != "":
		return auth.ParseAndVerifyHS256(token, v.secret)
	default:
		return nil, errNoVerifier
	}
}

// requireAuth replaces any client-supplied identity header with the verified
// token subject. Requests matching isPublic may go through anonymously.
func requireAuth(next http.Handler, v verifier, isPublic func(*http.Request) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(httpx.UserIDHeader)

		token, ok := bearerToken(r)
		if !ok {
			if isPublic != nil && isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := v.verify(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		r.Header.Set(httpx.UserIDHeader, claims.Sub)
		next.ServeHTTP(w, r)
	})
}
