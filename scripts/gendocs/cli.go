package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/anosql/internal/cli"
	"github.com/leapstack-labs/anosql/internal/cli/config"
)

// generateCLIDocs writes index.md plus one page per top-level command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	pages := renderCLIPages(cli.NewRootCmd())
	names := make([]string, 0, len(pages))
	for name := range pages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := os.WriteFile(filepath.Join(outDir, name), pages[name], 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

// renderCLIPages renders every CLI page keyed by file name.
func renderCLIPages(rootCmd *cobra.Command) map[string][]byte {
	pages := map[string][]byte{"index.md": renderCLIIndex(rootCmd)}
	for _, cmd := range visibleCommands(rootCmd) {
		pages[cmd.Name()+".md"] = renderCommandPage(cmd)
	}
	return pages
}

// renderCLIIndex renders the CLI overview page.
func renderCLIIndex(rootCmd *cobra.Command) []byte {
	w := NewMarkdownWriter()

	w.Frontmatter("CLI Reference", "Command-line interface reference for anosql")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("anosql loads named queries from annotated SQL files. The CLI lists, inspects, validates and runs them against SQLite or PostgreSQL.")

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/anosql/cmd/anosql@latest")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range visibleCommands(rootCmd) {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("These flags are available for all commands:")
	writeFlagsTable(w, rootCmd.PersistentFlags())

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Every setting can be given as an environment variable with the %s prefix. A double underscore separates nested keys.",
		InlineCode(config.EnvPrefix)))
	w.Table([]string{"Variable", "Setting"}, envVarRows(getConfigSchema()))
	w.Paragraph("Command-line flags take precedence over environment variables, which take precedence over anosql.yaml.")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Error (check stderr for details)"},
	})

	return w.Bytes()
}

// envVarRows lists the environment variable for every scalar setting.
// Keys shared by several target categories are listed once.
func envVarRows(fields []ConfigField) [][]string {
	seen := make(map[string]bool)
	var rows [][]string
	for _, f := range fields {
		if strings.Contains(f.Name, ".") || strings.HasPrefix(f.Type, "map") {
			continue
		}
		key := f.Name
		if f.Category != "project" {
			key = "target__" + f.Name
		}
		name := config.EnvPrefix + strings.ToUpper(key)
		if seen[name] {
			continue
		}
		seen[name] = true
		rows = append(rows, []string{InlineCode(name), InlineCode(strings.ReplaceAll(key, "__", "."))})
	}
	return rows
}

// visibleCommands returns the documented subcommands.
func visibleCommands(cmd *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "help" || sub.Name() == cobra.ShellCompRequestCmd {
			continue
		}
		cmds = append(cmds, sub)
	}
	return cmds
}

func usageLine(cmd *cobra.Command) string {
	if cmd.HasAvailableSubCommands() {
		return cmd.CommandPath() + " <subcommand> [flags]"
	}
	return cmd.UseLine()
}

// renderCommandPage renders the page for a top-level command. Subcommands
// get a section each on their parent's page.
func renderCommandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()

	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	w.CodeBlock("bash", usageLine(cmd))

	if len(cmd.Aliases) > 0 {
		w.Header(2, "Aliases")
		aliases := make([]string, len(cmd.Aliases))
		for i, alias := range cmd.Aliases {
			aliases[i] = InlineCode(alias)
		}
		w.BulletList(aliases)
	}

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}
	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		writeFlagsTable(w, cmd.InheritedFlags())
	}
	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", cleanExample(cmd.Example))
	}

	subs := visibleCommands(cmd)
	if len(subs) == 0 {
		return w.Bytes()
	}

	w.Header(2, "Subcommands")
	var rows [][]string
	for _, sub := range subs {
		rows = append(rows, []string{InlineCode(sub.Name()), cleanDescription(sub.Short)})
	}
	w.Table([]string{"Subcommand", "Description"}, rows)

	for _, sub := range subs {
		w.Header(3, sub.CommandPath())
		w.Paragraph(sub.Short)
		w.CodeBlock("bash", usageLine(sub))
		if flags := sub.LocalNonPersistentFlags(); flags.HasAvailableFlags() {
			writeFlagsTable(w, flags)
		}
	}
	return w.Bytes()
}

// writeFlagsTable writes one row per visible flag.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		defVal := f.DefValue
		if defVal != "" && f.Value.Type() == "string" {
			defVal = InlineCode(defVal)
		}
		rows = append(rows, []string{InlineCode("--" + f.Name), short, defVal, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Short", "Default", "Description"}, rows)
}

// cleanExample strips the indentation shared by every non-blank line.
func cleanExample(example string) string {
	lines := strings.Split(strings.Trim(example, "\n"), "\n")

	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}

	for i, line := range lines {
		if indent > 0 && len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
