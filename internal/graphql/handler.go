package graphql

import (
	"context"
	"fmt"
	"net/http"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"go.uber.org/zap"

	"quran-mood-gateway/pkg/logging/logging"
)

// NewSchema parses the schema against svc.
func NewSchema(svc MoodService) (*graphqlgo.Schema, error) {
	schema, err := graphqlgo.ParseSchema(schemaSDL, &rootResolver{svc: svc},
		graphqlgo.MaxDepth(maxQueryDepth),
		graphqlgo.Logger(panicLogger{}),
	)
	if err != nil {
		return nil, fmt.Errorf("parse graphql schema: %w", err)
	}
	return schema, nil
}

// NewHandler returns the HTTP endpoint for POSTed GraphQL requests.
func NewHandler(svc MoodService) (http.Handler, error) {
	schema, err := NewSchema(svc)
	if err != nil {
		return nil, err
	}
	return &relay.Handler{Schema: schema}, nil
}

// panicLogger routes resolver panics to the request logger.
type panicLogger struct{}

func (panicLogger) LogPanic(ctx context.Context, value interface{}) {
	logging.L(ctx).Error("graphql resolver panic", zap.Any("error", value))
}
