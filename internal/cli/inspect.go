package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ralt/rpm-builder/internal/builder/rpm"
	"github.com/ralt/rpm-builder/internal/models"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the metadata and payload of an RPM package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := rpm.ReadPackage(args[0])
			if err != nil {
				return models.NewError(models.ErrFilesystemAccess, args[0], err)
			}
			printPackage(cmd.OutOrStdout(), pkg, showFiles)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showFiles, "files", true, "List payload files")
	return cmd
}

func printPackage(w io.Writer, pkg *rpm.PackageInfo, showFiles bool) {
	fmt.Fprintf(w, "Name:        %s\n", pkg.Name)
	fmt.Fprintf(w, "Epoch:       %d\n", pkg.Epoch)
	fmt.Fprintf(w, "Version:     %s\n", pkg.Version)
	fmt.Fprintf(w, "Release:     %s\n", pkg.Release)
	fmt.Fprintf(w, "Arch:        %s\n", pkg.Arch)
	fmt.Fprintf(w, "License:     %s\n", pkg.License)
	fmt.Fprintf(w, "Summary:     %s\n", pkg.Summary)
	fmt.Fprintf(w, "Compression: %s\n", pkg.Compression)
	fmt.Fprintf(w, "Size:        %d\n", pkg.Size)
	fmt.Fprintf(w, "SHA256:      %s\n", pkg.SHA256)

	relations := []struct {
		label string
		deps  []string
	}{
		{"Requires", pkg.Requires},
		{"Provides", pkg.Provides},
		{"Conflicts", pkg.Conflicts},
		{"Obsoletes", pkg.Obsoletes},
	}
	for _, rel := range relations {
		for _, dep := range rel.deps {
			fmt.Fprintf(w, "%s: %s\n", rel.label, dep)
		}
	}

	kinds := make([]string, 0, len(pkg.Scriptlets))
	for kind := range pkg.Scriptlets {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(w, "Scriptlet: %s (%d bytes)\n", kind, len(pkg.Scriptlets[kind]))
	}

	for _, entry := range pkg.Changelog {
		date := time.Unix(entry.Time, 0).UTC().Format("2006-01-02")
		fmt.Fprintf(w, "Changelog: %s %s: %s\n", date, entry.Author, entry.Text)
	}

	if !showFiles {
		return
	}
	for _, f := range pkg.Files {
		marker := " "
		switch {
		case f.IsConfig():
			marker = "c"
		case f.IsDoc():
			marker = "d"
		}
		fmt.Fprintf(w, "%s %04o %8d %s\n", marker, f.Mode&0o7777, f.Size, f.Name)
	}
}
