package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"btcquotes/internal/aggregate"
	"btcquotes/internal/pipeline"
	"btcquotes/internal/provider"
	"btcquotes/internal/validate"
	"github.com/dustin/go-humanize"
)

// placeholder is shown for providers without a quote.
const placeholder = "-"

var errInvalidInput = errors.New("invalid input")

type onceResponse struct {
	Amount   string            `json:"amount"`
	Currency string            `json:"currency"`
	Quotes   []aggregate.Quote `json:"quotes,omitempty"`
	Best     provider.ID       `json:"best,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// runOnce validates text, runs a single epoch and writes the outcome as JSON.
// Invalid input is written too and reported as errInvalidInput.
func runOnce(ctx context.Context, agg *aggregate.Aggregator, v validate.Validator, text, currency string, w io.Writer) error {
	resp := onceResponse{Amount: text, Currency: currency}
	vs := v.Validate(text)
	if !vs.OK() {
		resp.Error = vs.Message()
		if err := writeJSON(w, resp); err != nil {
			return err
		}
		return errInvalidInput
	}

	st := agg.Run(ctx, vs.Amount)
	resp.Quotes = st.Result.Rows()
	resp.Best = st.Best
	resp.Error = st.Err
	return writeJSON(w, resp)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return nil
}

// runInteractive treats every input line as the current content of the
// amount box and prints the state each time it changes. At end of input it
// waits for the last line to settle.
func runInteractive(ctx context.Context, s *pipeline.Session, currency string, in io.Reader, out io.Writer) error {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		for st := range s.Subscribe(subCtx) {
			renderState(out, currency, st)
		}
	}()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		s.Input(strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	// Every published state reaches the renderer's buffer before Wait
	// returns, so cancelling afterwards drops nothing.
	if err := s.Wait(subCtx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("wait for last input: %w", err)
	}
	cancel()
	<-rendered
	return nil
}

func renderState(w io.Writer, currency string, st aggregate.State) {
	if st.Epoch == 0 {
		return
	}
	if st.Amount == 0 {
		fmt.Fprintf(w, "! %s\n", st.Err)
		return
	}

	rows, status := st.Result, ""
	if st.Loading {
		rows, status = st.Partial, " (loading)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s for $%s USD%s\n", currency, humanize.Comma(int64(st.Amount)), status)
	for _, q := range rows.Rows() {
		amount := q.Amount
		if !q.Present() {
			amount = placeholder
		}
		mark := ""
		if !st.Loading && q.Provider == st.Best {
			mark = "  <- best"
		}
		fmt.Fprintf(&b, "  %-8s %s%s\n", q.Provider, amount, mark)
	}
	if st.Err != "" {
		fmt.Fprintf(&b, "! %s\n", st.Err)
	}
	_, _ = io.WriteString(w, b.String())
}
