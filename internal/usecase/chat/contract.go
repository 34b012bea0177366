package chat

import (
	"context"

	"github.com/cityhealth/directory/internal/domain/lang"
	"github.com/cityhealth/directory/internal/domain/search/request"
	"github.com/cityhealth/directory/internal/domain/search/result"
)

// Searcher runs directory searches on behalf of the bot.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
}

// Responder generates free-form replies for messages no intent matched.
type Responder interface {
	Respond(ctx context.Context, message string, code lang.Code) (string, error)
}
