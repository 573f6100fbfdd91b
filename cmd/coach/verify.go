package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/discochess/coach/internal/codec"
	"github.com/discochess/coach/internal/codec/codecs"
	"github.com/discochess/coach/internal/profile"
	"github.com/discochess/coach/internal/rules"
	"github.com/discochess/coach/internal/store"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of the data directory",
	Long: `Verify that all stored profiles are valid.

This command checks:
- Each profile can be decompressed
- Each profile decodes as JSON
- Each profile belongs to the player its file is named after

With --games, every game archive is also parsed and unreadable games are
counted.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

var verifyGames bool

func init() {
	verifyCmd.Flags().BoolVar(&verifyGames, "games", false, "also parse every game archive")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	profilesDir := filepath.Join(dataDir, store.ProfilesDir)
	entries, err := os.ReadDir(profilesDir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading profiles directory: %w", err)
	}

	var errCount, checked int
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.Contains(name, ".json") {
			continue
		}
		checked++
		if verbose {
			fmt.Printf("  %s\n", name)
		}
		if err := verifyProfile(filepath.Join(profilesDir, name)); err != nil {
			fmt.Printf("  ERROR: %s: %v\n", name, err)
			errCount++
		}
	}
	fmt.Printf("Verified %d profiles.\n", checked)

	if verifyGames {
		n, err := verifyArchives(filepath.Join(dataDir, store.GamesDir))
		if err != nil {
			return err
		}
		errCount += n
	}

	if errCount > 0 {
		return fmt.Errorf("%d files failed verification", errCount)
	}

	fmt.Println("All files verified successfully.")
	return nil
}

// verifyProfile decodes one profile file named <username>.json[.ext].
func verifyProfile(path string) error {
	base := filepath.Base(path)
	username, ext, _ := strings.Cut(base, ".json")
	c, err := codecs.ByExtension(strings.TrimPrefix(ext, "."))
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := codec.Decode(c, f)
	if err != nil {
		return fmt.Errorf("decompression failed: %w", err)
	}
	p, err := profile.Unmarshal(data)
	if err != nil {
		return err
	}
	if !strings.EqualFold(p.Username, username) {
		return fmt.Errorf("profile belongs to %q", p.Username)
	}
	return nil
}

// verifyArchives parses every archive in dir and returns how many had
// unreadable games.
func verifyArchives(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading games directory: %w", err)
	}

	var bad int
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pgn" {
			continue
		}
		games, skipped, err := scanArchive(filepath.Join(dir, entry.Name()))
		switch {
		case err != nil:
			fmt.Printf("  ERROR: %s: %v\n", entry.Name(), err)
			bad++
		case skipped > 0:
			fmt.Printf("  WARN: %s: %d games, %d unreadable\n", entry.Name(), games, skipped)
			bad++
		case verbose:
			fmt.Printf("  %s: %d games\n", entry.Name(), games)
		}
	}
	return bad, nil
}

func scanArchive(path string) (games, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	sc := rules.NewScanner(f)
	for {
		_, err := sc.Next()
		if errors.Is(err, io.EOF) {
			return games, sc.Skipped(), nil
		}
		if err != nil {
			return games, sc.Skipped(), err
		}
		games++
	}
}
