// Package cmd provides the noted CLI's commands.
package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/noted-app/noted/internal/config"
	"github.com/noted-app/noted/internal/daemon"
	"github.com/noted-app/noted/internal/exitcode"
	"github.com/noted-app/noted/internal/tui"
	"github.com/noted-app/noted/internal/ui"
)

// Version is the noted binary's version string.
const Version = "0.1.0"

var dataPath string

var rootCmd = &cobra.Command{
	Use:     "noted",
	Short:   "noted - a desktop productivity daemon",
	Version: Version,
	Long: `noted watches which application window has your focus, lets you
drop inline notes into any watched file, and surfaces both through a
two-pane terminal UI.`,
}

func init() {
	defaultDataPath := ".noted"
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		defaultDataPath = home + "/.noted"
	}

	rootCmd.PersistentFlags().StringVarP(&dataPath, "data-path", "d", defaultDataPath,
		"directory holding noted's logs, config, and lock file")

	rootCmd.AddCommand(runCmd, versionCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the daemon and terminal UI",
	RunE:  runRun,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the noted version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(Version)
		return nil
	},
}

func runRun(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal() {
		return exitcode.New(exitcode.ErrUsage, "noted run must be attached to a terminal")
	}
	tui.SetColorProfile(ui.ColorProfile())

	cfg, err := config.Load(dataPath)
	if err != nil {
		return exitcode.Config(dataPath, err)
	}

	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return exitcode.DataDir(cfg.DataPath, err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.LstdFlags)

	d, err := daemon.New(cfg, logger)
	if err != nil {
		return err
	}
	logger.Printf("noted: starting against data directory %s", d.DataPath())
	d.Start()

	program := tea.NewProgram(tui.New(d.Dispatcher), tea.WithAltScreen())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if sig, ok := <-sigCh; ok {
			logger.Printf("noted: received %v, shutting down", sig)
			program.Quit()
		}
	}()

	if _, err := program.Run(); err != nil {
		d.Dispatcher.Quit()
		d.Wait()
		d.Close()
		return exitcode.Newf(exitcode.ErrInternal, "terminal UI: %v", err)
	}

	d.Dispatcher.Quit()
	d.Wait()
	return d.Close()
}

// Execute runs the root command and returns an exit code. main should
// call os.Exit with this code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return exitcode.Code(err)
	}
	return exitcode.Success
}
