package graphql

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"

	httptransport "eventhub/internal/transport/http"

	"github.com/go-playground/validator/v10"
	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

//go:embed schema.graphql
var schemaSDL string

const authorizationHeader = "Authorization"

type ctxKey int

const (
	writerKey ctxKey = iota
	requestKey
)

// Handler serves the GraphQL API. Resolvers get the response writer and the
// request through the context so login can set the refresh cookie.
type Handler struct {
	relay *relay.Handler
}

func NewHandler(log *slog.Logger, authService AuthService, cookie httptransport.CookieConfig) *Handler {
	resolver := &Resolver{
		log:      log,
		auth:     authService,
		cookie:   cookie,
		validate: validator.New(),
	}

	schema := graphql.MustParseSchema(schemaSDL, resolver)

	return &Handler{relay: &relay.Handler{Schema: schema}}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithValue(r.Context(), writerKey, w)
	ctx = context.WithValue(ctx, requestKey, r)

	h.relay.ServeHTTP(w, r.WithContext(ctx))
}

func responseWriter(ctx context.Context) http.ResponseWriter {
	w, _ := ctx.Value(writerKey).(http.ResponseWriter)
	return w
}

func authorization(ctx context.Context) string {
	r, ok := ctx.Value(requestKey).(*http.Request)
	if !ok {
		return ""
	}

	return r.Header.Get(authorizationHeader)
}
