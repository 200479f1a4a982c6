package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/claimhound/internal/fetch"
	"github.com/jonathan/claimhound/internal/ingestion"
)

var (
	convertInput     string
	convertStripHTML bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a CSV export of posts to the posts JSON file",
	Long: `Convert reads a CSV export (header row first) and writes every row as a JSON
object with the column names as keys.

--in may be a path, an http(s) URL or a bare file name inside the input
folder. Without --in, the input folder must contain exactly one .csv file.`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertInput, "in", "i", "", "CSV export to convert")
	convertCmd.Flags().StringP("out", "o", "", "posts JSON file to write (default posts_file)")
	convertCmd.Flags().String("input-folder", "", "folder searched for CSV exports (default input_folder)")
	convertCmd.Flags().BoolVar(&convertStripHTML, "strip-html", false, "convert HTML in the text column to plain text")
	bindConfigFlag(convertCmd.Flags(), "out", "posts_file")
	bindConfigFlag(convertCmd.Flags(), "input-folder", "input_folder")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, _ []string) error {
	var opts ingestion.ConvertOptions
	if convertStripHTML {
		opts.StripHTMLColumn = cfg.Fields.Text
	}

	var (
		csvPath string
		n       int
		err     error
	)
	if fetch.IsURL(convertInput) {
		csvPath = convertInput
		n, err = convertRemote(cmd, csvPath, opts)
	} else {
		csvPath, err = resolveCSVInput(convertInput, cfg.InputFolder)
		if err != nil {
			return err
		}
		n, err = ingestion.ConvertCSVToJSON(csvPath, cfg.PostsFile, opts)
	}
	if err != nil {
		return err
	}

	logger.Info("converted posts", "input", csvPath, "output", cfg.PostsFile, "posts", n)
	fmt.Fprintf(cmd.OutOrStdout(), "Converted %d posts from %s to %s\n", n, csvPath, cfg.PostsFile)
	return nil
}

// resolveCSVInput finds the CSV to convert. A bare name that does not exist
// in the working directory is looked up in folder.
func resolveCSVInput(input, folder string) (string, error) {
	if input == "" {
		files, err := ingestion.ListCSVFiles(folder)
		if err != nil {
			return "", err
		}
		switch len(files) {
		case 0:
			return "", fmt.Errorf("no CSV files in %s; pass --in", folder)
		case 1:
			return filepath.Join(folder, files[0]), nil
		default:
			return "", fmt.Errorf("several CSV files in %s (%s); pass --in", folder, strings.Join(files, ", "))
		}
	}

	if filepath.Base(input) != input {
		return input, nil
	}
	if _, err := os.Stat(input); err == nil {
		return input, nil
	}
	return filepath.Join(folder, input), nil
}

// convertRemote downloads a CSV export and converts it.
func convertRemote(cmd *cobra.Command, url string, opts ingestion.ConvertOptions) (int, error) {
	logger.Info("downloading export", "url", url)
	result, err := fetch.URL(cmd.Context(), url, fetch.DefaultOptions())
	if err != nil {
		return 0, err
	}
	return ingestion.ConvertCSVReaderToJSON(bytes.NewReader(result.Body), url, cfg.PostsFile, opts)
}
