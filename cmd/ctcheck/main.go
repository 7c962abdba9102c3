// Copyright 2025 The testct Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// ctcheck verifies the SCTs embedded in a certificate against a log-list
// dataset and prints one outcome per SCT. It applies no CT policy: the
// exit status reflects only whether verification itself could run.
package main

import (
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sigstore/sigstore/pkg/cryptoutils"

	"github.com/malwhile/testct/pkg/certificate"
	"github.com/malwhile/testct/pkg/loglist"
	"github.com/malwhile/testct/pkg/verify"
)

var logListPath *string
var certPath *string
var issuerPath *string
var entryType *string
var clockSkew *time.Duration

func init() {
	logListPath = flag.String("loglist", "", "Path to the CT log list JSON dataset")
	certPath = flag.String("cert", "", "Path to the certificate to check (PEM or DER)")
	issuerPath = flag.String("issuer", "", "Path to the issuing CA certificate (PEM or DER), enables precert reconstruction")
	entryType = flag.String("entry-type", "auto", "Signed entry reconstruction: auto, x509 or precert")
	clockSkew = flag.Duration("skew", verify.DefaultClockSkew, "Clock skew tolerance for the future-timestamp check")
	flag.Parse()
	if *logListPath == "" || *certPath == "" {
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Printf("Usage: %s -loglist LIST_JSON -cert CERT [OPTIONS]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	logListJSON, err := os.ReadFile(*logListPath)
	if err != nil {
		return err
	}
	registry, err := loglist.NewRegistryFromJSON(logListJSON)
	if err != nil {
		return err
	}

	cert, err := loadCertificate(*certPath)
	if err != nil {
		return err
	}

	cfg := verify.Config{ClockSkew: *clockSkew}
	switch *entryType {
	case "auto":
	case "x509":
		cfg.EntryType = verify.EntryTypeX509
	case "precert":
		cfg.EntryType = verify.EntryTypePrecert
	default:
		return fmt.Errorf("unknown entry type %q", *entryType)
	}
	if *issuerPath != "" {
		cfg.Issuer, err = loadCertificate(*issuerPath)
		if err != nil {
			return err
		}
	}

	verifier, err := verify.New(registry, cfg)
	if err != nil {
		return err
	}
	report, err := verifier.VerifyCertificate(cert)
	if err != nil {
		return err
	}

	if !report.ExtensionPresent {
		fmt.Println("certificate carries no SCT extension")
		return nil
	}
	fmt.Printf("%d SCTs, %d valid (registry of %d logs)\n", len(report.Results), report.Valid(), registry.Len())
	for _, result := range report.Results {
		desc := "unknown log"
		if result.Log != nil {
			desc = fmt.Sprintf("%s (%s)", result.Log.Description, result.Log.OperatedBy)
		} else if len(result.LogID) > 0 {
			desc = hex.EncodeToString(result.LogID)
		}
		fmt.Printf("  sct[%d] %-18s %s", result.Index, result.Outcome, desc)
		if !result.Timestamp.IsZero() {
			fmt.Printf(" @ %s", result.Timestamp.Format(time.RFC3339))
		}
		if result.Err != nil {
			fmt.Printf(" (%s)", result.Err)
		}
		fmt.Println()
	}
	return nil
}

// loadCertificate reads a PEM or DER certificate from disk. For PEM input
// with multiple blocks, the first certificate is used.
func loadCertificate(path string) (*certificate.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.Contains(data, []byte("-----BEGIN ")) {
		certs, err := cryptoutils.UnmarshalCertificatesFromPEM(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(certs) == 0 {
			return nil, fmt.Errorf("%s: no certificates found", path)
		}
		data = certs[0].Raw
	}
	cert, err := certificate.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cert, nil
}
