package storage

import (
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/olekukonko/tablewriter"
)

const (
	ConsoleFormat        = "console"
	GoTemplateFileFormat = "go-template-file"
)

// ListOpts holds the options of the `list` command.
type ListOpts struct {
	Bucket         string `mapstructure:"bucket"`
	Prefix         string `mapstructure:"prefix"`
	AWSRegion      string `mapstructure:"aws_region"`
	AWSProfile     string `mapstructure:"aws_profile"`
	AWSEndpointURL string `mapstructure:"aws_endpoint_url"`

	// List specific options
	Output string `mapstructure:"output,omitempty"`
}

// PruneOpts holds the options of the `prune` command.
type PruneOpts struct {
	Bucket         string `mapstructure:"bucket"`
	Prefix         string `mapstructure:"prefix"`
	AWSRegion      string `mapstructure:"aws_region"`
	AWSProfile     string `mapstructure:"aws_profile"`
	AWSEndpointURL string `mapstructure:"aws_endpoint_url"`

	// Prune specific options
	Keep      int           `mapstructure:"keep"`
	OlderThan time.Duration `mapstructure:"older_than"`
	DryRun    bool          `mapstructure:"dry_run"`
}

type FormatOpts struct {
	Type         string
	TemplatePath string
}

// ParseOutputOptions parse value of the "--output" flag and ensure they are valid.
// Currently, we only support the "go-template-file" and "console" output.
func ParseOutputOptions(output string) (FormatOpts, error) {
	formatOpts := FormatOpts{}
	if output == "" || output == ConsoleFormat {
		formatOpts.Type = ConsoleFormat
		return formatOpts, nil
	}

	parsed := strings.Split(output, "=")
	switch parsed[0] {
	case GoTemplateFileFormat:
		if len(parsed) == 1 {
			return formatOpts, fmt.Errorf("you need to provide a path to template file when using \"go-template-file\" options")
		}

		formatOpts.Type = GoTemplateFileFormat
		formatOpts.TemplatePath = parsed[1]
	default:
		return formatOpts, fmt.Errorf("\"%s\" is not a valid output format", output)
	}

	return formatOpts, nil
}

// GenerateList renders the list of backup objects in the requested format.
func GenerateList(objects []Object, opts FormatOpts) error {
	switch opts.Type {
	case ConsoleFormat:
		renderConsoleOutput(objects)
	case GoTemplateFileFormat:
		outputTemplate, err := template.ParseFiles(opts.TemplatePath)
		if err != nil {
			return fmt.Errorf("failed to parse go-template file : %w", err)
		}

		err = outputTemplate.Execute(os.Stdout, objects)
		if err != nil {
			return fmt.Errorf("failed to render go-template file : %w", err)
		}
	}

	return nil
}

// renderConsoleOutput displays the list of backups in stdout as a nice table.
func renderConsoleOutput(objects []Object) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	table.SetHeader([]string{"Key", "Size", "Last modified"})

	for _, obj := range objects {
		table.Append([]string{
			obj.Key,
			HumanSize(obj.Size),
			obj.LastModified.Format(time.RFC3339),
		})
	}

	table.Render()
}

// HumanSize renders a byte count with a binary unit suffix.
func HumanSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
