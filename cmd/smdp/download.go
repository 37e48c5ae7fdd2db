package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/covarr-net/smdp/internal/reference"
)

func newDownloadCmd() *cobra.Command {
	var (
		baseURL string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Fetch the reference distribution TSVs",
		Long: `Download the four reference distribution TSVs into the data directory
(data.dir, default ~/.smdp/data). The base URL is the location that serves
` + strings.Join(referenceFileList(), ", ") + `.`,
		Example: `  smdp download --base-url https://example.org/smdp/data
  smdp download --base-url file-server/refs --data-dir ./data --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseURL == "" {
				return usagef("--base-url is required")
			}
			return runDownload(baseURL, viper.GetString("data.dir"), force)
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "URL prefix serving the reference TSVs")
	cmd.Flags().BoolVar(&force, "force", false, "Replace files that already exist")
	return cmd
}

func referenceFileList() []string {
	files := make([]string, 0, len(reference.Names))
	for _, name := range reference.Names {
		files = append(files, reference.DefaultFiles[name])
	}
	return files
}

func runDownload(baseURL, destDir string, force bool) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", destDir, err)
	}

	fmt.Printf("Downloading reference distributions...\n")
	fmt.Printf("Destination: %s\n\n", destDir)

	for _, file := range referenceFileList() {
		dest := filepath.Join(destDir, file)
		if force {
			os.Remove(dest)
		}
		if err := downloadFile(strings.TrimRight(baseURL, "/")+"/"+file, dest); err != nil {
			return fmt.Errorf("downloading %s: %w", file, err)
		}
	}

	// Parse what we fetched so a bad download fails here, not at analysis time.
	if _, err := reference.LoadDir(destDir, reference.DefaultFiles); err != nil {
		return fmt.Errorf("downloaded files are not valid distributions: %w", err)
	}

	fmt.Printf("\nDownload complete!\n")
	fmt.Printf("To analyze a lineage, run:\n")
	fmt.Printf("  smdp analyze \"C897A, G3431T, A7842G\"\n")
	return nil
}

// downloadFile downloads a file from URL to the destination path with progress.
func downloadFile(url, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		fmt.Printf("  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Printf("  Downloading %s...\n", filepath.Base(destPath))

	client := &http.Client{
		Timeout: 5 * time.Minute,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	var downloaded int64
	pw := &progressWriter{
		total:      resp.ContentLength,
		downloaded: &downloaded,
		lastPrint:  time.Now(),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Printf("    Done: %s\n", formatSize(downloaded))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	total      int64
	downloaded *int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	*pw.downloaded += int64(n)

	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(*pw.downloaded) / float64(pw.total) * 100
			fmt.Printf("\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(*pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Printf("\r    Progress: %s  ", formatSize(*pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
