package main

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/tmorel/cleansync/internal/model"
)

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// resolveDate turns a --date argument into the canonical YYYY-MM-DD form.
// Accepts the canonical form directly, otherwise natural language like
// "yesterday" or "last sunday". Empty means today.
func resolveDate(arg string) (string, error) {
	if arg == "" {
		return time.Now().Format(model.DateLayout), nil
	}

	if t, err := time.Parse(model.DateLayout, arg); err == nil {
		return t.Format(model.DateLayout), nil
	}

	r, err := dateParser.Parse(arg, time.Now())
	if err != nil || r == nil {
		return "", fmt.Errorf("could not understand date %q (use YYYY-MM-DD or e.g. \"yesterday\")", arg)
	}
	return r.Time.Format(model.DateLayout), nil
}
