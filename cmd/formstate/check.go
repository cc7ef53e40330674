package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/formstate/internal/config"
	"github.com/vango-dev/formstate/pkg/form"
)

func checkCmd() *cobra.Command {
	var (
		path string
		sets []string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a form definition and report field errors",
		Long: `Load the form definition, apply optional values and print the status
of every field and global validator.

Exits with an error if the form is not valid.

Examples:
  formstate check
  formstate check --config signup.yaml --set user.email=ada@example.com
  formstate check --config s3://forms/signup.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			validity, err := runCheck(cmd.OutOrStdout(), path, sets)
			if err != nil {
				return err
			}
			if validity != form.ValidityValid {
				return fmt.Errorf("form is not valid (%s)", validity)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", config.ConfigFileName, "Path or s3://bucket/key of the form definition")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Set a field value (key=value), may be repeated")

	return cmd
}

func runCheck(w io.Writer, path string, sets []string) (form.Validity, error) {
	cfg, err := config.LoadURI(context.Background(), path)
	if err != nil {
		return form.ValidityInvalid, err
	}
	success(w, "Loaded %s (%d fields, %d validators)", cfg.Name, len(cfg.Fields), len(cfg.Validators))

	f, err := cfg.Build(form.WithLogger(slog.Default()))
	if err != nil {
		return form.ValidityInvalid, err
	}
	defer f.Close()

	values := make(map[string]any, len(sets))
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		if !ok {
			return form.ValidityInvalid, fmt.Errorf("--set %q: expected key=value", s)
		}
		values[key] = value
	}

	var controls, global form.Errors
	obsControls := f.ObserveErrors(func(e form.Errors) { controls = e })
	obsGlobal := f.ObserveGlobalErrors(func(e form.Errors) { global = e })
	defer obsControls.Close()
	defer obsGlobal.Close()

	f.WriteMany(values)
	f.Loop().Drain()

	fmt.Fprintln(w)
	for _, key := range f.Keys() {
		report(w, key, controls)
	}
	for _, key := range f.ValidatorKeys() {
		report(w, "["+key+"]", renamed(global, key))
	}
	fmt.Fprintln(w)

	merged := form.Errors{}
	for k, st := range controls {
		merged[k] = st
	}
	for k, st := range global {
		merged["["+k+"]"] = st
	}
	return merged.Validity(), nil
}

func renamed(errs form.Errors, key string) form.Errors {
	st, ok := errs[key]
	if !ok {
		return nil
	}
	return form.Errors{"[" + key + "]": st}
}

func report(w io.Writer, key string, errs form.Errors) {
	st, ok := errs[key]
	switch {
	case !ok:
		success(w, "%s", key)
	case st.IsPending():
		warn(w, "%s: pending", key)
	case len(st.Messages) == 0:
		failure(w, "%s: invalid", key)
	default:
		failure(w, "%s: %s", key, strings.Join(st.Messages, "; "))
	}
}
