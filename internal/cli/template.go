package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/templatehub/internal/domain"
	"github.com/shaiso/templatehub/internal/engine"
)

// NewTemplateCmd создаёт группу команд для управления шаблонами.
func NewTemplateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage workflow templates",
	}

	cmd.AddCommand(
		newTemplateListCmd(clientFn, outputFn),
		newTemplateFeaturedCmd(clientFn, outputFn),
		newTemplateCategoryCmd(clientFn, outputFn),
		newTemplateMineCmd(clientFn, outputFn),
		newTemplateShowCmd(clientFn, outputFn),
		newTemplateCreateCmd(clientFn, outputFn),
		newTemplateUpdateCmd(clientFn, outputFn),
		newTemplateDeleteCmd(clientFn, outputFn),
		newTemplatePublishCmd(clientFn, outputFn),
		newTemplateUseCmd(clientFn, outputFn),
		newTemplateReviewCmd(clientFn, outputFn),
		newTemplateStatsCmd(clientFn, outputFn),
		newTemplateValidateCmd(outputFn),
	)

	return cmd
}

func newTemplateListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var opts ListTemplatesOpts

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search templates visible to the organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := clientFn().ListTemplates(opts)
			if err != nil {
				return err
			}

			return outputFn().Templates(templates)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&opts.Difficulty, "difficulty", "", "Filter by difficulty")
	cmd.Flags().StringVar(&opts.Tags, "tags", "", "Comma-separated tags (any match)")
	cmd.Flags().StringVarP(&opts.Search, "query", "q", "", "Search in name and description")
	cmd.Flags().Float64Var(&opts.MinRating, "min-rating", 0, "Minimum average rating")
	cmd.Flags().Int64Var(&opts.MinUsage, "min-usage", 0, "Minimum usage count")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "Sort by usage_count, average_rating, created_at or name")
	cmd.Flags().StringVar(&opts.Order, "order", "", "Sort order: asc or desc")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Max results (default 50, max 100)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Skip first N results")

	return cmd
}

func newTemplateFeaturedCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "featured",
		Short: "List featured templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := clientFn().ListFeatured(limit)
			if err != nil {
				return err
			}

			return outputFn().Templates(templates)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Max results")

	return cmd
}

func newTemplateCategoryCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "category CATEGORY",
		Short: "List public templates in a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := clientFn().ListByCategory(args[0])
			if err != nil {
				return err
			}

			return outputFn().Templates(templates)
		},
	}
}

func newTemplateMineCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List all templates of your organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := clientFn().ListOrganizationTemplates()
			if err != nil {
				return err
			}

			return outputFn().Templates(templates)
		},
	}
}

func newTemplateShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show template details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			template, err := clientFn().GetTemplate(args[0])
			if err != nil {
				return err
			}

			return outputFn().Template(template, true)
		},
	}
}

func newTemplateCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a template from a JSON definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readJSONFile(file)
			if err != nil {
				return err
			}

			template, err := clientFn().CreateTemplate(data)
			if err != nil {
				return err
			}

			out := outputFn()
			out.Notice("Template created: %s", template.ID)
			return out.Template(template, false)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to template definition JSON (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newTemplateUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Apply a partial update from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readJSONFile(file)
			if err != nil {
				return err
			}

			template, err := clientFn().UpdateTemplate(args[0], data)
			if err != nil {
				return err
			}

			out := outputFn()
			out.Notice("Template updated: %s", template.ID)
			return out.Template(template, false)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to patch JSON (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newTemplateDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().DeleteTemplate(args[0]); err != nil {
				return err
			}

			outputFn().Notice("Template deleted: %s", args[0])
			return nil
		},
	}
}

func newTemplatePublishCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "publish ID",
		Short: "Make a template public",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			template, err := clientFn().PublishTemplate(args[0])
			if err != nil {
				return err
			}

			out := outputFn()
			out.Notice("Template published: %s", template.ID)
			return out.Template(template, false)
		},
	}
}

func newTemplateUseCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name, description, varsFile string
	var vars []string

	cmd := &cobra.Command{
		Use:   "use ID",
		Short: "Create a workflow from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := UseTemplateRequest{Name: name}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}

			variables, err := parseVariables(varsFile, vars)
			if err != nil {
				return err
			}
			req.Variables = variables

			workflow, err := clientFn().UseTemplate(args[0], req)
			if err != nil {
				return err
			}

			out := outputFn()
			out.Notice("Workflow created: %s", workflow.ID)
			return out.Workflow(workflow)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Workflow name (default: template name)")
	cmd.Flags().StringVar(&description, "description", "", "Workflow description (default: template description)")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Variable override key=value (repeatable)")
	cmd.Flags().StringVar(&varsFile, "vars-file", "", "Path to JSON object with variable overrides")

	return cmd
}

func newTemplateReviewCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req ReviewRequest

	cmd := &cobra.Command{
		Use:   "review ID",
		Short: "Rate a template (1-5)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := clientFn().ReviewTemplate(args[0], req)
			if err != nil {
				return err
			}

			out := outputFn()
			out.Notice("Review recorded: %.1f", review.Review.Rating)
			return out.Review(review)
		},
	}

	cmd.Flags().Float64Var(&req.Rating, "rating", 0, "Rating from 1 to 5 (required)")
	cmd.Flags().StringVar(&req.Comment, "comment", "", "Review comment")
	cmd.MarkFlagRequired("rating")

	return cmd
}

func newTemplateStatsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := clientFn().GetStats()
			if err != nil {
				return err
			}

			return outputFn().Stats(stats)
		},
	}
}

// ValidationReport — результат локальной проверки определения.
type ValidationReport struct {
	Valid   bool     `json:"valid"`
	Reason  string   `json:"reason,omitempty"`
	NodeID  string   `json:"node_id,omitempty"`
	Field   string   `json:"field,omitempty"`
	Message string   `json:"message,omitempty"`
	Order   []string `json:"order,omitempty"`
	Tokens  []string `json:"tokens"`
}

// errInvalidDefinition — определение не прошло проверку.
var errInvalidDefinition = errors.New("template definition is invalid")

// ValidateDefinition проверяет JSON-определение шаблона без обращения к API.
func ValidateDefinition(data []byte) (*ValidationReport, error) {
	var def domain.TemplateDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}

	report := &ValidationReport{Tokens: engine.ExtractTokens(def.Nodes)}
	if err := engine.ValidateDefinition(def); err != nil {
		var vErr *engine.ValidationError
		if errors.As(err, &vErr) {
			report.Reason = vErr.Reason
			report.NodeID = vErr.NodeID
			report.Field = vErr.Field
		}
		report.Message = err.Error()
		return report, nil
	}

	report.Valid = true
	report.Order, _ = engine.TopologicalOrder(def.Nodes, def.Edges)
	return report, nil
}

func newTemplateValidateCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a template definition locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readJSONFile(args[0])
			if err != nil {
				return err
			}

			report, err := ValidateDefinition(data)
			if err != nil {
				return err
			}

			if err := outputFn().Validation(report); err != nil {
				return err
			}
			if !report.Valid {
				return fmt.Errorf("%w: %s", errInvalidDefinition, report.Message)
			}
			return nil
		},
	}
}

func readJSONFile(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s: invalid JSON", path)
	}
	return data, nil
}

// parseVariables собирает переопределения переменных из файла и флагов --var.
// Флаги перекрывают файл. Значение флага разбирается как JSON,
// если не получилось — используется как строка.
func parseVariables(file string, pairs []string) (map[string]any, error) {
	variables := make(map[string]any)

	if file != "" {
		data, err := readJSONFile(file)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &variables); err != nil {
			return nil, fmt.Errorf("%s: variables must be a JSON object: %w", file, err)
		}
	}

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --var %q: want key=value", pair)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		variables[key] = value
	}

	if len(variables) == 0 {
		return nil, nil
	}
	return variables, nil
}
