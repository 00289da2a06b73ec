package session

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/mwiater/routerchat/internal/openrouter"
	"github.com/mwiater/routerchat/models"
)

// Asker sends one question. *openrouter.Client satisfies it.
type Asker interface {
	Ask(ctx context.Context, question, modelID string) (openrouter.Result, error)
}

// Recorder persists one turn. *sessionlog.Logger satisfies it.
type Recorder interface {
	Append(question string, statusCode int, response, modelID, modelName string) error
}

// Turn is the outcome of one dispatched question.
type Turn struct {
	Question string
	Result   openrouter.Result
	// LogErr is set when the record could not be written.
	LogErr error
}

// Text is the answer or the formatted error, exactly as logged.
func (t Turn) Text() string {
	return t.Result.Text()
}

// Dispatcher runs the Dispatching state: ask, classify, record.
type Dispatcher struct {
	Asker    Asker
	Recorder Recorder
	Log      log.FieldLogger
}

// Dispatch asks question of model and appends exactly one record, whatever
// the outcome. A transport failure is recorded with status 0 and the error
// text as the body.
func (d *Dispatcher) Dispatch(ctx context.Context, model models.ModelEntry, question string) Turn {
	res, err := d.Asker.Ask(ctx, question, model.ID)
	if err != nil {
		res = openrouter.Result{StatusCode: 0, ErrorBody: err.Error()}
	}
	turn := Turn{Question: question, Result: res}

	if err := d.Recorder.Append(question, res.StatusCode, turn.Text(), model.ID, model.Name); err != nil {
		turn.LogErr = err
		if d.Log != nil {
			d.Log.WithFields(log.Fields{
				"model":  model.ID,
				"status": res.StatusCode,
			}).WithError(err).Error("Failed to append conversation record")
		}
	}
	return turn
}
