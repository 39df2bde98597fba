package render

import (
	"context"
	"fmt"
	"time"

	"forge/internal/collection"
	"forge/internal/store"
)

// resolveRequestSource implements the Request chain source (§4.6, §6): read
// a past or fresh exchange of another recipe per the configured trigger,
// then extract the configured section (body, or a named response header).
func resolveRequestSource(goCtx context.Context, ctx *Context, src *collection.RequestSource) ([]byte, string, error) {
	recipeID := src.Recipe.String()
	recipe, ok := ctx.Collection.Recipes[recipeID]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrRecipeUnknown, recipeID)
	}

	exchange, err := obtainExchange(goCtx, ctx, recipeID, recipe, src.Trigger)
	if err != nil {
		return nil, "", err
	}

	switch src.Section.Kind {
	case collection.SectionHeader:
		val, ok := exchange.Headers[src.Section.Header]
		if !ok {
			return nil, "", &MissingHeaderError{Header: src.Section.Header}
		}
		return []byte(val), "", nil
	default:
		return exchange.Body, exchange.Headers["Content-Type"], nil
	}
}

// obtainExchange implements the trigger table: Never requires history to
// already exist, NoHistory and Expire(d) reuse history when it satisfies the
// policy and otherwise send fresh, Always never reuses.
func obtainExchange(goCtx context.Context, ctx *Context, recipeID string, recipe *collection.Recipe, trig collection.Trigger) (store.Exchange, error) {
	switch trig.Kind {
	case collection.TriggerNever:
		ex, ok, err := getStored(ctx, recipeID)
		if err != nil {
			return store.Exchange{}, err
		}
		if !ok {
			return store.Exchange{}, ErrNoResponse
		}
		return ex, nil

	case collection.TriggerNoHistory:
		ex, ok, err := getStored(ctx, recipeID)
		if err != nil {
			return store.Exchange{}, err
		}
		if ok {
			return ex, nil
		}
		return sendFresh(goCtx, ctx, recipeID, recipe)

	case collection.TriggerExpire:
		ex, ok, err := getStored(ctx, recipeID)
		if err != nil {
			return store.Exchange{}, err
		}
		if ok && time.Since(ex.EndTime) <= trig.Expire {
			return ex, nil
		}
		return sendFresh(goCtx, ctx, recipeID, recipe)

	default: // TriggerAlways
		return sendFresh(goCtx, ctx, recipeID, recipe)
	}
}

func getStored(ctx *Context, recipeID string) (store.Exchange, bool, error) {
	if ctx.Store == nil {
		return store.Exchange{}, false, nil
	}
	ex, ok, err := ctx.Store.GetLatest(recipeID)
	if err != nil {
		return store.Exchange{}, false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return ex, ok, nil
}

func sendFresh(goCtx context.Context, ctx *Context, recipeID string, recipe *collection.Recipe) (store.Exchange, error) {
	if ctx.HTTPEngine == nil {
		return store.Exchange{}, &TriggerError{RecipeID: recipeID, Cause: ErrTriggerNotAllowed}
	}

	ex, err := ctx.HTTPEngine.Send(goCtx, recipe, ctx)
	if err != nil {
		return store.Exchange{}, &TriggerError{RecipeID: recipeID, Cause: err}
	}

	if ctx.Store != nil {
		if err := ctx.Store.InsertExchange(ex); err != nil {
			return store.Exchange{}, &TriggerError{RecipeID: recipeID, Cause: fmt.Errorf("%w: %v", ErrDatabase, err)}
		}
	}
	return ex, nil
}
