// internal/task/handlers.go
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/xkilldash9x/foxbridge/api/schemas"
	"github.com/xkilldash9x/foxbridge/internal/browser"
)

// registerHandlers populates the dispatch table.
func (e *Executor) registerHandlers() {
	e.handlers[schemas.ActionNavigate] = bind(e.handleNavigate)
	e.handlers[schemas.ActionScreenshot] = bind(e.handleScreenshot)
	e.handlers[schemas.ActionGetContent] = bind(e.handleGetContent)
	e.handlers[schemas.ActionClick] = bind(e.handleClick)
	e.handlers[schemas.ActionFill] = bind(e.handleFill)
	e.handlers[schemas.ActionEvaluate] = bind(e.handleEvaluate)
	e.handlers[schemas.ActionGetCookies] = bind(e.handleGetCookies)
	e.handlers[schemas.ActionSetCookies] = bind(e.handleSetCookies)
	e.handlers[schemas.ActionDeleteCookies] = bind(e.handleDeleteCookies)
	e.handlers[schemas.ActionClearCookies] = bind(e.handleClearCookies)
	e.handlers[schemas.ActionGetStorage] = bind(e.handleGetStorage)
	e.handlers[schemas.ActionSetStorage] = bind(e.handleSetStorage)
	e.handlers[schemas.ActionDeleteStorage] = bind(e.handleDeleteStorage)
	e.handlers[schemas.ActionClearStorage] = bind(e.handleClearStorage)
	e.handlers[schemas.ActionSetGeolocation] = bind(e.handleSetGeolocation)
	e.handlers[schemas.ActionGeneratePDF] = bind(e.handleGeneratePDF)
	e.handlers[schemas.ActionWaitForSelector] = bind(e.handleWaitForSelector)
	e.handlers[schemas.ActionWaitForTimeout] = bind(e.handleWaitForTimeout)
	e.handlers[schemas.ActionPressKey] = bind(e.handlePressKey)
	e.handlers[schemas.ActionTypeText] = bind(e.handleTypeText)
	e.handlers[schemas.ActionMouseClick] = bind(e.handleMouseClick)
	e.handlers[schemas.ActionMouseMove] = bind(e.handleMouseMove)
	e.handlers[schemas.ActionDragAndDrop] = bind(e.handleDragAndDrop)
	e.handlers[schemas.ActionUploadFile] = bind(e.handleUploadFile)
}

func succeeded() map[string]interface{} {
	return map[string]interface{}{"success": true}
}

// pageInfo collects the url and, when withTitle is set, the title.
func pageInfo(ctx context.Context, page browser.Page, withTitle bool) (map[string]interface{}, error) {
	url, err := page.URL(ctx)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{"url": url}
	if withTitle {
		title, err := page.Title(ctx)
		if err != nil {
			return nil, err
		}
		out["title"] = title
	}
	return out, nil
}

// outputPath expands a leading "~" and falls back to def.
func outputPath(path, def string) (string, error) {
	if path == "" {
		path = def
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	return expanded, nil
}

func millis(ms *float64) time.Duration {
	if ms == nil {
		return 0
	}
	return time.Duration(*ms * float64(time.Millisecond))
}

// -- Page --

// Navigation itself happens in the shared pre-step.
func (e *Executor) handleNavigate(ctx context.Context, page browser.Page, _ *schemas.NavigateParams) (map[string]interface{}, error) {
	return pageInfo(ctx, page, true)
}

func (e *Executor) handleScreenshot(ctx context.Context, page browser.Page, p *schemas.ScreenshotParams) (map[string]interface{}, error) {
	path, err := outputPath(p.Path, e.cfg.Task().ScreenshotPath)
	if err != nil {
		return nil, err
	}
	if err := page.Screenshot(ctx, path, p.FullPage); err != nil {
		return nil, err
	}
	out, err := pageInfo(ctx, page, false)
	if err != nil {
		return nil, err
	}
	out["screenshot_path"] = path
	return out, nil
}

func (e *Executor) handleGetContent(ctx context.Context, page browser.Page, _ *schemas.GetContentParams) (map[string]interface{}, error) {
	content, err := page.Content(ctx)
	if err != nil {
		return nil, err
	}
	out, err := pageInfo(ctx, page, true)
	if err != nil {
		return nil, err
	}
	out["content"] = content
	return out, nil
}

func (e *Executor) handleGeneratePDF(ctx context.Context, page browser.Page, p *schemas.GeneratePDFParams) (map[string]interface{}, error) {
	path, err := outputPath(p.Path, e.cfg.Task().PDFPath)
	if err != nil {
		return nil, err
	}
	if err := page.PDF(ctx, path, p.PDFOptions); err != nil {
		return nil, err
	}
	return map[string]interface{}{"pdf_path": path}, nil
}

func (e *Executor) handleEvaluate(ctx context.Context, page browser.Page, p *schemas.EvaluateParams) (map[string]interface{}, error) {
	v, err := page.Evaluate(ctx, p.Script)
	if err != nil {
		return nil, err
	}
	out, err := pageInfo(ctx, page, false)
	if err != nil {
		return nil, err
	}
	out["result"] = v
	return out, nil
}

// -- Interaction --

func (e *Executor) handleClick(ctx context.Context, page browser.Page, p *schemas.ClickParams) (map[string]interface{}, error) {
	if err := page.Click(ctx, p.Selector); err != nil {
		return nil, err
	}
	if err := page.WaitForLoadState(ctx, p.WaitState); err != nil {
		return nil, err
	}
	return pageInfo(ctx, page, true)
}

func (e *Executor) handleFill(ctx context.Context, page browser.Page, p *schemas.FillParams) (map[string]interface{}, error) {
	if err := page.Fill(ctx, p.Selector, *p.Value); err != nil {
		return nil, err
	}
	return pageInfo(ctx, page, false)
}

func (e *Executor) handleWaitForSelector(ctx context.Context, page browser.Page, p *schemas.WaitForSelectorParams) (map[string]interface{}, error) {
	if err := page.WaitForSelector(ctx, p.Selector, millis(p.Timeout)); err != nil {
		return nil, err
	}
	return succeeded(), nil
}

func (e *Executor) handleWaitForTimeout(ctx context.Context, page browser.Page, p *schemas.WaitForTimeoutParams) (map[string]interface{}, error) {
	if err := page.Wait(ctx, millis(p.Timeout)); err != nil {
		return nil, err
	}
	return succeeded(), nil
}

func (e *Executor) handlePressKey(ctx context.Context, page browser.Page, p *schemas.PressKeyParams) (map[string]interface{}, error) {
	if err := page.PressKey(ctx, p.Key); err != nil {
		return nil, err
	}
	return succeeded(), nil
}

func (e *Executor) handleTypeText(ctx context.Context, page browser.Page, p *schemas.TypeTextParams) (map[string]interface{}, error) {
	if err := page.TypeText(ctx, p.Value); err != nil {
		return nil, err
	}
	return succeeded(), nil
}

func (e *Executor) handleMouseClick(ctx context.Context, page browser.Page, p *schemas.MouseClickParams) (map[string]interface{}, error) {
	if err := page.MouseClick(ctx, *p.X, *p.Y, p.Button); err != nil {
		return nil, err
	}
	return succeeded(), nil
}

func (e *Executor) handleMouseMove(ctx context.Context, page browser.Page, p *schemas.MouseMoveParams) (map[string]interface{}, error) {
	if err := page.MouseMove(ctx, *p.X, *p.Y); err != nil {
		return nil, err
	}
	return succeeded(), nil
}

func (e *Executor) handleDragAndDrop(ctx context.Context, page browser.Page, p *schemas.DragAndDropParams) (map[string]interface{}, error) {
	if err := page.DragAndDrop(ctx, p.SourceSelector, p.TargetSelector); err != nil {
		return nil, err
	}
	return succeeded(), nil
}

func (e *Executor) handleUploadFile(ctx context.Context, page browser.Page, p *schemas.UploadFileParams) (map[string]interface{}, error) {
	path, err := outputPath(p.FilePath, "")
	if err != nil {
		return nil, err
	}
	if err := page.SetInputFiles(ctx, p.Selector, path); err != nil {
		return nil, err
	}
	return succeeded(), nil
}

// -- Cookies --

func (e *Executor) handleGetCookies(ctx context.Context, page browser.Page, _ *schemas.GetCookiesParams) (map[string]interface{}, error) {
	cookies, err := page.Cookies(ctx)
	if err != nil {
		return nil, err
	}
	if cookies == nil {
		cookies = []schemas.Cookie{}
	}
	return map[string]interface{}{"cookies": cookies}, nil
}

func (e *Executor) handleSetCookies(ctx context.Context, page browser.Page, p *schemas.SetCookiesParams) (map[string]interface{}, error) {
	if len(p.Cookies) > 0 {
		if err := page.AddCookies(ctx, p.Cookies); err != nil {
			return nil, err
		}
	}
	return succeeded(), nil
}

func (e *Executor) handleDeleteCookies(ctx context.Context, page browser.Page, p *schemas.DeleteCookiesParams) (map[string]interface{}, error) {
	if p.CookieName != "" {
		if err := page.DeleteCookie(ctx, p.CookieName); err != nil {
			return nil, err
		}
	}
	return succeeded(), nil
}

func (e *Executor) handleClearCookies(ctx context.Context, page browser.Page, _ *schemas.ClearCookiesParams) (map[string]interface{}, error) {
	if err := page.ClearCookies(ctx); err != nil {
		return nil, err
	}
	return succeeded(), nil
}

func (e *Executor) handleSetGeolocation(ctx context.Context, page browser.Page, p *schemas.SetGeolocationParams) (map[string]interface{}, error) {
	if err := page.SetGeolocation(ctx, *p.Latitude, *p.Longitude, p.Accuracy); err != nil {
		return nil, err
	}
	return succeeded(), nil
}
