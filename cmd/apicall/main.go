package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/samvad-hq/jsonfetch/internal/config"
	"github.com/samvad-hq/jsonfetch/internal/logger"
	"github.com/samvad-hq/jsonfetch/pkg/apicaller"
	"github.com/samvad-hq/jsonfetch/pkg/httpclient"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		// Call failures were already logged by the caller.
		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(os.Stderr, "apicall: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// usageError marks problems with the command line rather than the call.
type usageError struct{ error }

type cliOptions struct {
	method   string
	headers  []string
	data     string
	hasData  bool
	query    []string
	baseURL  string
	timeout  time.Duration
	compact  bool
	endpoint string
}

func parseArgs(args []string, stderr io.Writer) (cliOptions, error) {
	var o cliOptions
	fs := pflag.NewFlagSet("apicall", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: apicall [flags] <endpoint>")
		fs.PrintDefaults()
	}

	fs.StringVarP(&o.method, "method", "X", "GET", "HTTP method")
	fs.StringArrayVarP(&o.headers, "header", "H", nil, `request header "Key: Value" (repeatable)`)
	fs.StringVarP(&o.data, "data", "d", "", "request body")
	fs.StringArrayVar(&o.query, "query", nil, "query parameter key=value (repeatable)")
	fs.StringVar(&o.baseURL, "base-url", "", "base URL for relative endpoints (overrides BASE_URL)")
	fs.DurationVar(&o.timeout, "timeout", 0, "request timeout, 0 disables it")
	fs.BoolVar(&o.compact, "compact", false, "print the response on a single line")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return o, err
		}
		return o, usageError{err}
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, usageError{fmt.Errorf("expected exactly one endpoint, got %d", fs.NArg())}
	}
	o.endpoint = fs.Arg(0)
	o.hasData = fs.Changed("data")
	return o, nil
}

func (o cliOptions) requestOptions() (apicaller.RequestOptions, error) {
	ro := apicaller.RequestOptions{Method: strings.TrimSpace(o.method)}

	if len(o.headers) > 0 {
		ro.Headers = make(map[string]string, len(o.headers))
		for _, h := range o.headers {
			k, v, ok := strings.Cut(h, ":")
			if !ok || strings.TrimSpace(k) == "" {
				return ro, usageError{fmt.Errorf("invalid header %q (expected \"Key: Value\")", h)}
			}
			ro.Headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}

	if len(o.query) > 0 {
		q := make(map[string]string, len(o.query))
		for _, kv := range o.query {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				return ro, usageError{fmt.Errorf("invalid query %q (expected key=value)", kv)}
			}
			q[k] = v
		}
		ro.Transport = map[string]any{apicaller.TransportQuery: q}
	}

	if o.hasData {
		ro = ro.BodyString(o.data)
	}
	return ro, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}
	reqOpts, err := opts.requestOptions()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return usageError{fmt.Errorf("load config: %w", err)}
	}
	log, err := logger.InitWithWriter(cfg, stderr)
	if err != nil {
		return usageError{fmt.Errorf("init logger: %w", err)}
	}
	defer logger.Close()

	baseURL := cfg.BaseURL
	if opts.baseURL != "" {
		baseURL = opts.baseURL
	}
	client := httpclient.NewRestyClient(httpclient.Options{
		BaseURL: baseURL,
		Timeout: opts.timeout,
		Logger:  log.Sugar(),
	})

	v, err := apicaller.NewCaller(client, log).Call(ctx, opts.endpoint, reqOpts)
	if err != nil {
		return err
	}

	var out []byte
	if opts.compact {
		out, err = json.Marshal(v)
	} else {
		out, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}
