// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package report

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	x509path "github.com/H0llyW00dzZ/cert-path-builder/src/internal/x509/path"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// RenderSummary renders a short per-attempt summary of the result as plain
// text, marking the best path.
func RenderSummary(result *x509path.Result) string {
	if len(result.Paths) == 0 {
		return "No certificate paths were found\n"
	}

	var b strings.Builder
	for i, rp := range result.Paths {
		marker := ""
		if i == result.BestIndex {
			marker = " (best)"
		}

		if rp.IsSuccess() {
			b.WriteString(fmt.Sprintf("Path %d: OK, %d certificate(s)%s\n", i+1, len(rp.Path), marker))
		} else {
			b.WriteString(fmt.Sprintf("Path %d: FAILED, %d certificate(s)%s: %v\n", i+1, len(rp.Path), marker, rp.Err))
		}

		for j, cert := range rp.Path {
			b.WriteString(fmt.Sprintf("  %d. %s [%s]\n", j+1, cert.Subject.CommonName, cert.Fingerprint()))
		}
	}
	return b.String()
}

// RenderTable renders all attempted paths as a formatted markdown table.
//
// Each row covers one attempt: its outcome, length, leaf and anchor subjects,
// and the verification error if the attempt failed.
func RenderTable(result *x509path.Result) string {
	if len(result.Paths) == 0 {
		return "No paths to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	headers := []string{"🔢 #", "✅ Status", "🔗 Length", "📛 Leaf", "🏛️ Anchor", "⚠️ Error"}
	table.Header(headers)

	var rows [][]string
	for i, rp := range result.Paths {
		status := "OK"
		if !rp.IsSuccess() {
			status = "FAILED"
		}
		if i == result.BestIndex {
			status += " (best)"
		}

		leaf, anchor := "", ""
		if len(rp.Path) > 0 {
			leaf = rp.Path[0].Subject.CommonName
			anchor = rp.Path[len(rp.Path)-1].Subject.CommonName
		}

		errText := ""
		if rp.Err != nil {
			errText = rp.Err.Error()
		}

		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			status,
			fmt.Sprintf("%d", len(rp.Path)),
			leaf,
			anchor,
			errText,
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// RenderPathTree renders a single certificate path as an ASCII tree diagram,
// leaf first, trust anchor last.
func RenderPathTree(path []*x509path.Certificate) string {
	if len(path) == 0 {
		return "No certificates in path"
	}

	var result strings.Builder
	for i, cert := range path {
		isLast := i == len(path)-1

		connector := "├── "
		if isLast {
			connector = "└── "
		}

		certInfo := cert.Subject.CommonName
		if role := certRole(i, len(path)); role != "" {
			certInfo += fmt.Sprintf(" (%s)", role)
		}

		result.WriteString(connector + certInfo + "\n")
	}

	return result.String()
}

// ToJSON converts the result to structured JSON for external tools.
//
// The document lists every attempted path with per-certificate details and
// identifies the best attempt.
func ToJSON(result *x509path.Result) ([]byte, error) {
	type CertData struct {
		Index              int       `json:"index"`
		Role               string    `json:"role"`
		Subject            string    `json:"subject"`
		Issuer             string    `json:"issuer"`
		SerialNumber       string    `json:"serialNumber"`
		Fingerprint        string    `json:"fingerprintSHA256"`
		SignatureAlgorithm string    `json:"signatureAlgorithm"`
		PublicKeyAlgorithm string    `json:"publicKeyAlgorithm"`
		KeySize            int       `json:"keySize"`
		NotBefore          time.Time `json:"notBefore"`
		NotAfter           time.Time `json:"notAfter"`
		IsCA               bool      `json:"isCA"`
	}

	type PathData struct {
		Index        int        `json:"index"`
		Valid        bool       `json:"valid"`
		Best         bool       `json:"best"`
		Error        string     `json:"error,omitempty"`
		Certificates []CertData `json:"certificates"`
	}

	type ResultData struct {
		Timestamp string     `json:"timestamp"`
		Success   bool       `json:"success"`
		BestIndex int        `json:"bestIndex"`
		Paths     []PathData `json:"paths"`
	}

	data := ResultData{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Success:   result.IsSuccess(),
		BestIndex: result.BestIndex,
		Paths:     make([]PathData, 0, len(result.Paths)),
	}

	for i, rp := range result.Paths {
		pd := PathData{
			Index:        i,
			Valid:        rp.IsSuccess(),
			Best:         i == result.BestIndex,
			Certificates: make([]CertData, 0, len(rp.Path)),
		}
		if rp.Err != nil {
			pd.Error = rp.Err.Error()
		}

		for j, cert := range rp.Path {
			keySize := 0
			pubKeyAlgo := "unknown"
			switch pubKey := cert.PublicKey.(type) {
			case *rsa.PublicKey:
				keySize = pubKey.Size() * 8
				pubKeyAlgo = "RSA"
			case *ecdsa.PublicKey:
				keySize = pubKey.Curve.Params().BitSize
				pubKeyAlgo = "ECDSA"
			}

			pd.Certificates = append(pd.Certificates, CertData{
				Index:              j,
				Role:               certRole(j, len(rp.Path)),
				Subject:            cert.Subject.CommonName,
				Issuer:             cert.Issuer.CommonName,
				SerialNumber:       cert.SerialNumber.String(),
				Fingerprint:        cert.Fingerprint(),
				SignatureAlgorithm: cert.SignatureAlgorithm.String(),
				PublicKeyAlgorithm: pubKeyAlgo,
				KeySize:            keySize,
				NotBefore:          cert.NotBefore,
				NotAfter:           cert.NotAfter,
				IsCA:               cert.IsCA,
			})
		}

		data.Paths = append(data.Paths, pd)
	}

	return json.MarshalIndent(data, "", "  ")
}

// certRole describes a certificate's position within a built path.
func certRole(index, total int) string {
	switch {
	case total == 1:
		return "Directly Trusted Certificate"
	case index == 0:
		return "End-Entity (Server/Leaf) Certificate"
	case index == total-1:
		return "Trust Anchor"
	default:
		return "Intermediate CA Certificate"
	}
}
