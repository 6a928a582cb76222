package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gregLibert/ehealth-card/pkg/ehealth"
	"github.com/gregLibert/ehealth-card/pkg/pcsc"
	"github.com/rs/zerolog"
)

// options are the actions requested on the command line.
type options struct {
	listReaders  bool
	listFiles    bool
	identity     bool
	admin        bool
	version      bool
	applications bool
	trace        bool
	export       string
	dump         string
}

// wantsCard reports whether any requested action needs a card.
func (o options) wantsCard() bool {
	return o.identity || o.admin || o.version || o.applications || o.export != "" || o.dump != ""
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "ehealth-card: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ehealth-card", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts       options
		configPath string
		verbose    bool
		flagCfg    = defaultConfig()
	)
	fs.BoolVar(&opts.listReaders, "l", false, "list the attached card readers")
	fs.BoolVar(&opts.listFiles, "F", false, "list the known card files")
	fs.BoolVar(&opts.identity, "i", false, "print the card holder identity (EF.ID)")
	fs.BoolVar(&opts.admin, "a", false, "print the administrative data (EF.AD)")
	fs.BoolVar(&opts.version, "V", false, "print the card application version (EF.VERSION)")
	fs.BoolVar(&opts.applications, "D", false, "list the applications of EF.DIR")
	fs.BoolVar(&opts.trace, "t", false, "append the APDU trace to the report")
	fs.StringVar(&opts.export, "x", "", "export the certificate file `NAME`")
	fs.StringVar(&opts.dump, "d", "", "dump the content of file `NAME`")
	fs.IntVar(&flagCfg.Reader, "r", flagCfg.Reader, "use the reader at index `N`")
	fs.StringVar(&flagCfg.ReaderName, "n", flagCfg.ReaderName, "use the first reader whose name contains `TEXT`")
	fs.StringVar(&flagCfg.ExportPath, "o", flagCfg.ExportPath, "write the exported certificate to `FILE`")
	fs.StringVar(&flagCfg.ReportPath, "f", flagCfg.ReportPath, "write the report to `FILE` instead of stdout")
	fs.StringVar(&configPath, "c", "", "read settings from the TOML `FILE`")
	fs.BoolVar(&verbose, "v", false, "log every APDU exchange")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	cfg := defaultConfig()
	if configPath != "" {
		loaded, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "r":
			cfg.Reader = flagCfg.Reader
		case "n":
			cfg.ReaderName = flagCfg.ReaderName
		case "o":
			cfg.ExportPath = flagCfg.ExportPath
		case "f":
			cfg.ReportPath = flagCfg.ReportPath
		}
	})
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	log, err := newLogger(stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	// Without any action the holder and insurer data are printed.
	if !opts.listReaders && !opts.listFiles && !opts.wantsCard() {
		opts.identity = true
		opts.admin = true
	}

	var sections []string
	if opts.listFiles {
		sections = append(sections, ehealth.DescribeFiles())
	}

	// The export target is claimed before the card is touched, so an
	// existing file fails the run without a single APDU.
	var (
		export    *os.File
		exportOut io.Writer
	)
	if opts.export != "" {
		export, err = ehealth.CreateExport(opts.export, cfg.ExportPath)
		if err != nil {
			return err
		}
		exportOut = export
	}

	if opts.listReaders || opts.wantsCard() {
		more, err := readCard(cfg, opts, log, exportOut)
		if export != nil {
			err = finishExport(export, err)
		}
		if err != nil {
			return err
		}
		sections = append(sections, more...)
	}

	return writeReport(stdout, cfg.ReportPath, sections)
}

// finishExport closes the export file and removes it unless the run
// succeeded.
func finishExport(f *os.File, runErr error) error {
	err := runErr
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close %s: %w", f.Name(), cerr)
	}
	if err != nil {
		_ = os.Remove(f.Name())
	}
	return err
}

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger(), nil
}

// readCard connects to the configured reader and runs the card actions.
func readCard(cfg config, opts options, log zerolog.Logger, export io.Writer) ([]string, error) {
	pctx, err := pcsc.EstablishContext(log)
	if err != nil {
		return nil, &ehealth.ConnectionError{Err: err}
	}
	defer func() {
		if err := pctx.Release(); err != nil {
			log.Warn().Err(err).Msg("failed to release PC/SC context")
		}
	}()

	readers, err := pctx.ListReaders()
	if err != nil {
		return nil, &ehealth.ConnectionError{Err: err}
	}

	var sections []string
	if opts.listReaders {
		sections = append(sections, describeReaders(readers))
		if !opts.wantsCard() {
			return sections, nil
		}
	}

	reader, err := pcsc.PickReader(readers, cfg.ReaderName, cfg.Reader)
	if err != nil {
		return nil, &ehealth.ConnectionError{Err: err}
	}
	log.Info().Str("reader", reader).Msg("using reader")

	var channel *pcsc.Channel
	sess, err := ehealth.Dial(func() (ehealth.Channel, error) {
		ch, err := pctx.Connect(reader)
		if err != nil {
			return nil, err
		}
		channel = ch
		return ch, nil
	}, ehealth.WithLogger(log))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := channel.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to disconnect card")
		}
	}()

	more, err := report(sess, cfg, opts, export)
	if err != nil {
		if opts.trace {
			log.Error().Msg(sess.Trace().Describe())
		}
		return nil, err
	}
	return append(sections, more...), nil
}

// report verifies the card and collects one section per requested action.
// The certificate named by opts.export is written to export.
func report(sess *ehealth.Session, cfg config, opts options, export io.Writer) ([]string, error) {
	if err := sess.VerifyCardProfile(); err != nil {
		return nil, err
	}

	var sections []string

	if opts.identity {
		id, err := sess.ReadIdentity()
		if err != nil {
			return nil, err
		}
		sections = append(sections, id.Describe())
	}

	if opts.admin {
		ad, err := sess.ReadAdministrativeData()
		if err != nil {
			return nil, err
		}
		sections = append(sections, ad.Describe())
	}

	if opts.version {
		v, err := sess.ReadVersion()
		if err != nil {
			return nil, err
		}
		sections = append(sections, v.Describe())
	}

	if opts.applications {
		apps, err := sess.ReadApplications()
		if err != nil {
			return nil, err
		}
		sections = append(sections, ehealth.DescribeApplications(apps))
	}

	if opts.dump != "" {
		data, err := sess.ReadFile(opts.dump)
		if err != nil {
			return nil, err
		}
		sections = append(sections, ehealth.DescribeFile(opts.dump, data))
	}

	if opts.export != "" {
		if export == nil {
			return nil, fmt.Errorf("export %s: no output", opts.export)
		}
		if err := sess.ExportCertificateTo(opts.export, export, cfg.ExportLength); err != nil {
			return nil, err
		}
		sections = append(sections, fmt.Sprintf("=== EXPORT ===\n    - %s written to %s", opts.export, cfg.ExportPath))
	}

	if opts.trace {
		sections = append(sections, sess.Trace().Describe())
	}
	return sections, nil
}

func describeReaders(readers []string) string {
	var sb strings.Builder
	sb.WriteString("=== READERS ===")
	if len(readers) == 0 {
		sb.WriteString("\n    - No reader attached.")
	}
	for i, r := range readers {
		sb.WriteString(fmt.Sprintf("\n    [%d] %s", i, r))
	}
	return sb.String()
}

// writeReport prints the sections to stdout, or to path when it is set.
func writeReport(stdout io.Writer, path string, sections []string) error {
	if len(sections) == 0 {
		return nil
	}
	text := strings.Join(sections, "\n\n") + "\n"

	if path == "" {
		_, err := io.WriteString(stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
