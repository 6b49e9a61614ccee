/*
Padd reformats a single source file against a specification.

Usage:

	padd [flags] [SPEC_FILE] TARGET_FILE

The flags are:

	-c, --check
		Do not write output; exit non-zero if TARGET_FILE is not already
		formatted according to SPEC_FILE.

	-o, --out FILE
		Write the formatted result to FILE instead of TARGET_FILE.

	-p, --profile NAME
		Look up NAME in the profiles config (--config) for a default spec
		path and --check setting, so SPEC_FILE may be omitted.

	--config FILE
		Profiles config path (default "padd.toml"); missing is not an
		error, it just disables -p/--profile.

The file-watcher, work-queue, daemon, and modification-time tracking this
tool's on-disk description mentions are external concerns and are not
implemented here; this binary formats exactly one file per invocation.
*/
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/srhickma/padd"
	"github.com/srhickma/padd/internal/cache"
)

const (
	ExitSuccess = iota
	ExitUnformatted
	ExitInitError
	ExitFormatError
)

var (
	flagCheck   *bool   = pflag.BoolP("check", "c", false, "Do not write output; exit non-zero if the target is not already formatted")
	flagOut     *string = pflag.StringP("out", "o", "", "Write the formatted result to this file instead of the target")
	flagProfile *string = pflag.StringP("profile", "p", "", "Named profile to read a default spec path/--check setting from")
	flagConfig  *string = pflag.String("config", "padd.toml", "Profiles config file")
)

func main() {
	os.Exit(run())
}

func run() int {
	pflag.Parse()

	cfg, err := LoadConfig(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading config: %s\n", err.Error())
		return ExitInitError
	}

	args := pflag.Args()
	specPath, targetPath, check, err := resolveArgs(cfg, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return ExitInitError
	}

	specText, err := os.ReadFile(specPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading spec: %s\n", err.Error())
		return ExitInitError
	}

	logCacheStatus(specPath, string(specText))

	cs, err := padd.CompileSpec(string(specText))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: compiling spec: %s\n", err.Error())
		return ExitInitError
	}

	if err := cache.Save(specPath+".paddc", cache.Record{
		SpecHash: cache.Hash(string(specText)),
		Revision: cs.Revision.String(),
	}); err != nil {
		log.Printf("warning: could not write compiled-spec cache: %s", err.Error())
	}

	targetText, err := os.ReadFile(targetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading target: %s\n", err.Error())
		return ExitInitError
	}

	formatted, err := padd.Format(cs, string(targetText), "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: formatting: %s\n", err.Error())
		return ExitFormatError
	}

	if check {
		if formatted == string(targetText) {
			return ExitSuccess
		}
		fmt.Fprintf(os.Stderr, "%s is not formatted\n", targetPath)
		return ExitUnformatted
	}

	outPath := targetPath
	if *flagOut != "" {
		outPath = *flagOut
	}
	if err := os.WriteFile(outPath, []byte(formatted), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: writing output: %s\n", err.Error())
		return ExitInitError
	}

	return ExitSuccess
}

// resolveArgs merges positional arguments with the selected profile (if
// any): a profile supplies a default spec path and --check setting, both
// overridable by flags/positional args actually given on the command
// line.
func resolveArgs(cfg *Config, args []string) (specPath, targetPath string, check bool, err error) {
	check = *flagCheck

	var profile *Profile
	if *flagProfile != "" {
		p, ok := cfg.Profiles[*flagProfile]
		if !ok {
			return "", "", false, fmt.Errorf("unknown profile %q", *flagProfile)
		}
		profile = &p
		if !pflag.Lookup("check").Changed {
			check = profile.Check
		}
	}

	switch len(args) {
	case 2:
		return args[0], args[1], check, nil
	case 1:
		if profile == nil {
			return "", "", false, fmt.Errorf("usage: padd [flags] [SPEC_FILE] TARGET_FILE")
		}
		return profile.Spec, args[0], check, nil
	default:
		return "", "", false, fmt.Errorf("usage: padd [flags] [SPEC_FILE] TARGET_FILE")
	}
}

func logCacheStatus(specPath, specText string) {
	rec, err := cache.Load(specPath + ".paddc")
	if err != nil {
		log.Printf("warning: could not read compiled-spec cache: %s", err.Error())
		return
	}
	if rec.Valid(specText) {
		log.Printf("spec %s unchanged since last compile (revision %s)", specPath, rec.Revision)
	} else {
		log.Printf("spec %s changed or not previously cached, recompiling", specPath)
	}
}
