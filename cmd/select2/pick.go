package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-select2/pkg/choice"
	"github.com/goliatone/go-select2/pkg/fielddef"
	"github.com/goliatone/go-select2/pkg/render"
	"github.com/goliatone/go-select2/pkg/select2"
)

// errAborted is returned when the user interrupts the prompt.
var errAborted = errors.New("pick: aborted")

// prompter asks the user to pick any number of options and returns the
// chosen indices.
type prompter interface {
	MultiSelect(ctx context.Context, message string, options []string) ([]int, error)
}

type surveyPrompter struct {
	pageSize int
}

func (p surveyPrompter) MultiSelect(ctx context.Context, message string, options []string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []string
	prompt := &survey.MultiSelect{
		Message: message,
		Options: options,
	}
	if p.pageSize > 0 {
		prompt.PageSize = p.pageSize
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return nil, translateSurveyErr(err)
	}
	return indicesOf(options, out), nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}

func indicesOf(options, values []string) []int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	var out []int
	for i, option := range options {
		if _, ok := seen[option]; ok {
			out = append(out, i)
		}
	}
	return out
}

func newPickCmd(v *viper.Viper) *cobra.Command {
	return newPickCmdWith(v, surveyPrompter{pageSize: 12})
}

func newPickCmdWith(v *viper.Viper, p prompter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose values for a field in the terminal and print its markup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig(v)
			logger, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			set, err := buildFields(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return runPick(cmd.Context(), set, v.GetString("field"), v.GetString("term"), p, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("field", "tags", "definition key of the field to fill")
	cmd.Flags().String("term", "", "search term sent to remote fields")
	return cmd
}

func runPick(ctx context.Context, set *fieldSet, key, term string, p prompter, out io.Writer) error {
	var field *fielddef.Field
	for _, f := range set.defined {
		if f.Definition.Key == key {
			field = f
			break
		}
	}
	if field == nil {
		return fmt.Errorf("pick: unknown field %q", key)
	}

	options, err := pickOptions(ctx, field, term)
	if err != nil {
		return err
	}
	if len(options) == 0 {
		return fmt.Errorf("pick: no choices for %q", key)
	}

	labels := make([]string, len(options))
	for i, o := range options {
		labels[i] = fmt.Sprintf("%s (%s)", o.Text, o.ID)
	}
	label := field.Definition.Label
	if label == "" {
		label = key
	}
	picked, err := p.MultiSelect(ctx, label, labels)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(picked))
	for _, i := range picked {
		if i >= 0 && i < len(options) {
			ids = append(ids, options[i].ID)
		}
	}

	model := select2.NewValueModel[choice.Option]()
	bound := field.Clone(model)
	req := select2.Values{bound.InputName(): {strings.Join(ids, bound.Settings().SeparatorOrDefault())}}
	if err := bound.ConvertInput(ctx, req); err != nil {
		return err
	}
	bound.UpdateModel()

	markup, err := select2.NewMarkupRenderer()
	if err != nil {
		return err
	}
	html, err := markup.Render(bound, nil)
	if err != nil {
		return err
	}
	head := render.NewHead()
	if err := bound.RenderHead(ctx, nil, head); err != nil {
		return err
	}

	if _, err := io.WriteString(out, html); err != nil {
		return err
	}
	_, err = head.WriteTo(out)
	return err
}

// pickOptions lists what the user can choose from: the first page of the
// remote query, or the declared choices of a local field.
func pickOptions(ctx context.Context, field *fielddef.Field, term string) ([]choice.Option, error) {
	if field.Provider != nil {
		resp, err := field.Provider.Query(ctx, term, 1)
		if err != nil {
			return nil, err
		}
		return resp.Results, nil
	}
	return field.Definition.Choices, nil
}
