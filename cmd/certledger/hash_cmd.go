package main

import (
	"flag"
	"fmt"
	"os"

	"certledger/internal/domain"
	"certledger/internal/infra/crypto"
)

func runHash(args []string) int {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var certificateID, recipient, course, institution, issuer, issueDate string
	fs.StringVar(&certificateID, "certificate-id", "", "public certificate id")
	fs.StringVar(&recipient, "recipient", "", "recipient name")
	fs.StringVar(&course, "course", "", "course name")
	fs.StringVar(&institution, "institution", "", "institution name")
	fs.StringVar(&issuer, "issuer", "", "issuer name")
	fs.StringVar(&issueDate, "issue-date", "", "issue date YYYY-MM-DD")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if certificateID == "" || recipient == "" || course == "" || institution == "" || issuer == "" || issueDate == "" {
		fmt.Fprintln(os.Stderr, "hash requires all six fields")
		return 1
	}

	svc := crypto.NewService(nil)
	hash := svc.ContentHash(domain.Certificate{
		CertificateID:   certificateID,
		RecipientName:   recipient,
		CourseName:      course,
		InstitutionName: institution,
		IssuerName:      issuer,
		IssueDate:       issueDate,
	})
	fmt.Println(hash)
	return 0
}
