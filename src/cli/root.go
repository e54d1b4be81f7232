// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/H0llyW00dzZ/cert-path-builder/src/internal/helper/posix"
	x509certs "github.com/H0llyW00dzZ/cert-path-builder/src/internal/x509/certs"
	x509path "github.com/H0llyW00dzZ/cert-path-builder/src/internal/x509/path"
	"github.com/H0llyW00dzZ/cert-path-builder/src/internal/x509/report"
	"github.com/H0llyW00dzZ/cert-path-builder/src/internal/x509/revocation"
	"github.com/H0llyW00dzZ/cert-path-builder/src/logger"
	"github.com/spf13/cobra"
)

var (
	// ErrTargetRequired is returned when neither --file nor --connect is given.
	ErrTargetRequired = errors.New("cli: a target certificate is required; use --file or --connect")
	// ErrRootsRequired is returned when no trust anchors are configured.
	ErrRootsRequired = errors.New("cli: at least one --roots file is required")
	// ErrNoTrustedPath is returned when path building finishes without a verified path.
	ErrNoTrustedPath = errors.New("cli: no trusted certificate path found")
)

// OperationPerformed indicates whether a path building run was started.
var OperationPerformed bool

// OperationPerformedSuccessfully indicates whether the run produced a verified path.
var OperationPerformedSuccessfully bool

// cliFlags holds all flag values for one Execute invocation.
type cliFlags struct {
	inputFile     string
	connect       string
	roots         []string
	intermediates []string
	atTime        string
	hostname      string
	dumpPrefix    string
	configFile    string
	timeout       int
	useAIA        bool
	checkRevoke   bool
	asTable       bool
	asJSON        bool
}

// Execute runs the root command and returns any error that occurred during
// execution. The context cancels in-flight network lookups when the process
// receives a termination signal.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	OperationPerformed = false
	OperationPerformedSuccessfully = false

	flags := &cliFlags{}

	rootCmd := &cobra.Command{
		Use:     posix.GetExecutableName(),
		Short:   "X.509 certification path builder",
		Long: "Builds and verifies certification paths from a target certificate to " +
			"configured trust anchors, exploring every candidate issuer with backtracking.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execCli(ctx, flags, version, log)
		},
	}

	rootCmd.Flags().StringVarP(&flags.inputFile, "file", "f", "", "target certificate file (PEM, DER, or PKCS#7)")
	rootCmd.Flags().StringVarP(&flags.connect, "connect", "c", "", "fetch the target from a TLS endpoint (HOST:PORT)")
	rootCmd.Flags().StringArrayVarP(&flags.roots, "roots", "r", nil, "PEM bundle of trust anchors (repeatable)")
	rootCmd.Flags().StringArrayVarP(&flags.intermediates, "intermediates", "i", nil, "PEM bundle of candidate intermediates (repeatable)")
	rootCmd.Flags().StringVar(&flags.atTime, "time", "", "verification time in RFC 3339 format (default: now)")
	rootCmd.Flags().StringVar(&flags.hostname, "hostname", "", "verify the leaf certificate against this hostname")
	rootCmd.Flags().StringVar(&flags.dumpPrefix, "dump", "", "write the best path's certificates to PREFIX-N.pem files")
	rootCmd.Flags().StringVar(&flags.configFile, "config", "", "configuration file (JSON or YAML)")
	rootCmd.Flags().IntVar(&flags.timeout, "timeout", 0, "network timeout in seconds (overrides config)")
	rootCmd.Flags().BoolVar(&flags.useAIA, "aia", false, "fetch missing issuers via Authority Information Access")
	rootCmd.Flags().BoolVar(&flags.checkRevoke, "check-revocation", false, "spot-check OCSP/CRL status of the best path")
	rootCmd.Flags().BoolVar(&flags.asTable, "table", false, "render attempted paths as a markdown table")
	rootCmd.Flags().BoolVar(&flags.asJSON, "json", false, "emit the result as structured JSON")

	rootCmd.SetArgs(os.Args[1:])
	return rootCmd.ExecuteContext(ctx)
}

// execCli builds and verifies certification paths for the requested target
// and renders the result.
func execCli(ctx context.Context, flags *cliFlags, version string, log logger.Logger) error {
	cfg, err := loadConfig(flags.configFile)
	if err != nil {
		return err
	}

	timeout := time.Duration(cfg.Defaults.Timeout) * time.Second
	if flags.timeout > 0 {
		timeout = time.Duration(flags.timeout) * time.Second
	}

	if flags.inputFile == "" && flags.connect == "" {
		return ErrTargetRequired
	}
	if len(flags.roots) == 0 {
		return ErrRootsRequired
	}

	// Resolve the target certificate and any extra intermediates presented
	// alongside it.
	target, presented, err := resolveTarget(ctx, flags, timeout)
	if err != nil {
		return err
	}

	anchors, err := loadBundles(flags.roots)
	if err != nil {
		return err
	}

	intermediates, err := loadBundles(flags.intermediates)
	if err != nil {
		return err
	}

	at := x509path.NewUTCTime(time.Now())
	if flags.atTime != "" {
		parsed, err := time.Parse(time.RFC3339, flags.atTime)
		if err != nil {
			return fmt.Errorf("cli: invalid --time value: %w", err)
		}
		at = x509path.NewUTCTime(parsed)
	}

	store := x509path.NewTrustStore()
	for _, anchor := range anchors {
		store.AddTrustedCertificate(x509path.New(anchor))
	}

	static := x509path.NewStaticIssuerSource()
	for _, cert := range intermediates {
		static.AddCert(x509path.New(cert))
	}
	for _, cert := range presented {
		static.AddCert(x509path.New(cert))
	}

	verify := x509path.ChainVerifier(x509path.VerifyOptions{Hostname: flags.hostname})

	var result x509path.Result
	builder := x509path.NewPathBuilder(x509path.New(target), store, verify, at, &result)
	builder.AddCertIssuerSource(static)

	if flags.useAIA {
		aia := x509path.NewAIAIssuerSource(version)
		aia.HTTPConfig.Timeout = timeout
		aia.HTTPConfig.UserAgent = cfg.HTTP.UserAgent
		aia.SetCacheTTL(time.Duration(cfg.Defaults.AIACacheTTL) * time.Second)
		builder.AddCertIssuerSource(aia)
	}

	OperationPerformed = true

	if err := runBuilder(ctx, builder); err != nil {
		return err
	}

	if err := renderResult(flags, &result, log); err != nil {
		return err
	}

	if flags.checkRevoke && result.IsSuccess() {
		httpCfg := x509path.NewHTTPConfig(version)
		httpCfg.Timeout = timeout
		httpCfg.UserAgent = cfg.HTTP.UserAgent

		checker := revocation.NewChecker(httpCfg)
		statuses := checker.CheckPath(ctx, result.BestPath().Path)
		log.Println(revocation.Summarize(statuses))
	}

	// The best path is dumped even when it failed; the files are what makes
	// a failed build diagnosable.
	if flags.dumpPrefix != "" && len(result.Paths) > 0 {
		if err := dumpPath(flags.dumpPrefix, result.BestPath().Path); err != nil {
			return err
		}
	}

	if !result.IsSuccess() {
		return fmt.Errorf("%w: %v", ErrNoTrustedPath, result.Error())
	}

	OperationPerformedSuccessfully = true
	return nil
}

// runBuilder runs the path builder, waiting for asynchronous completion and
// honoring context cancellation.
func runBuilder(ctx context.Context, builder *x509path.PathBuilder) error {
	done := make(chan struct{})
	status := builder.Run(func() { close(done) })
	if status == x509path.StatusSync {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		builder.Cancel()
		return ctx.Err()
	}
}

// renderResult writes the result in the requested format.
func renderResult(flags *cliFlags, result *x509path.Result, log logger.Logger) error {
	switch {
	case flags.asJSON:
		data, err := report.ToJSON(result)
		if err != nil {
			return fmt.Errorf("cli: failed to encode result: %w", err)
		}
		log.Println(string(data))
	case flags.asTable:
		log.Println(report.RenderTable(result))
	default:
		log.Printf("%s", report.RenderSummary(result))
		if best := result.BestPath(); best != nil && best.IsSuccess() {
			log.Printf("%s", report.RenderPathTree(best.Path))
		}
	}
	return nil
}

// resolveTarget returns the certificate to build a path for, plus any extra
// certificates presented with it (e.g. intermediates sent during a TLS
// handshake).
func resolveTarget(ctx context.Context, flags *cliFlags, timeout time.Duration) (*x509.Certificate, []*x509.Certificate, error) {
	switch {
	case flags.inputFile != "":
		data, err := os.ReadFile(flags.inputFile)
		if err != nil {
			return nil, nil, fmt.Errorf("cli: failed to read input file: %w", err)
		}

		decoder := x509certs.New()
		decoded, err := decoder.DecodeMultiple(data)
		if err != nil {
			cert, err := decoder.Decode(data)
			if err != nil {
				return nil, nil, fmt.Errorf("cli: failed to decode certificate: %w", err)
			}
			decoded = []*x509.Certificate{cert}
		}
		if len(decoded) == 0 {
			return nil, nil, fmt.Errorf("cli: no certificates found in %s", flags.inputFile)
		}
		return decoded[0], decoded[1:], nil

	case flags.connect != "":
		host, portStr, err := net.SplitHostPort(flags.connect)
		if err != nil {
			return nil, nil, fmt.Errorf("cli: invalid --connect value %q: %w", flags.connect, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, nil, fmt.Errorf("cli: invalid --connect port %q: %w", portStr, err)
		}

		peerCerts, err := fetchRemoteCertificates(ctx, host, port, timeout)
		if err != nil {
			return nil, nil, err
		}
		return peerCerts[0], peerCerts[1:], nil

	default:
		return nil, nil, ErrTargetRequired
	}
}

// loadBundles reads and decodes one or more PEM bundle files.
func loadBundles(paths []string) ([]*x509.Certificate, error) {
	decoder := x509certs.New()

	var out []*x509.Certificate
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cli: failed to read %s: %w", path, err)
		}
		decoded, err := decoder.DecodeMultiple(data)
		if err != nil {
			return nil, fmt.Errorf("cli: failed to decode %s: %w", path, err)
		}
		out = append(out, decoded...)
	}
	return out, nil
}

// dumpPath writes each certificate of the path to PREFIX-N.pem, leaf first.
func dumpPath(prefix string, path []*x509path.Certificate) error {
	encoder := x509certs.New()
	for i, cert := range path {
		name := fmt.Sprintf("%s-%d.pem", prefix, i+1)
		if err := os.WriteFile(name, encoder.EncodePEM(cert.Certificate), 0644); err != nil {
			return fmt.Errorf("cli: failed to write %s: %w", name, err)
		}
	}
	return nil
}
