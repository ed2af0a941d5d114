package cve

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
)

// SeedLoader loads vulnerability records into the repository.
type SeedLoader struct {
	repo   ports.VulnerabilityRepository
	logger *slog.Logger
}

// NewSeedLoader creates a new seed loader.
func NewSeedLoader(repo ports.VulnerabilityRepository, logger *slog.Logger) *SeedLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeedLoader{repo: repo, logger: logger.With("component", "seed_loader")}
}

// SeedResult counts the outcome of a load.
type SeedResult struct {
	Loaded int
	Failed int
}

// EnsureSeeded inserts the reference vulnerabilities when the store is empty.
// It reports whether anything was inserted.
func (s *SeedLoader) EnsureSeeded(ctx context.Context) (bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count vulnerabilities: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	res := s.Load(ctx, ReferenceVulnerabilities())
	if res.Failed > 0 {
		return res.Loaded > 0, fmt.Errorf("failed to seed %d reference vulnerabilities", res.Failed)
	}
	return true, nil
}

// LoadFromFile loads a JSON array of vulnerability records.
func (s *SeedLoader) LoadFromFile(ctx context.Context, path string) (SeedResult, error) {
	s.logger.Info("Loading vulnerabilities", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return SeedResult{}, fmt.Errorf("failed to read seed file: %w", err)
	}

	var vulns []domain.VulnerabilityRecord
	if err := json.Unmarshal(data, &vulns); err != nil {
		return SeedResult{}, fmt.Errorf("failed to parse seed file: %w", err)
	}

	return s.Load(ctx, vulns), nil
}

// Load upserts every record, skipping ones without a valid CVE id or title.
func (s *SeedLoader) Load(ctx context.Context, vulns []domain.VulnerabilityRecord) SeedResult {
	var res SeedResult
	for _, v := range vulns {
		if !domain.IsValidCVEID(v.CVEID) || v.Title == "" {
			s.logger.Warn("Skipping invalid vulnerability", "cve_id", v.CVEID)
			res.Failed++
			continue
		}
		v.Severity = domain.NormalizeSeverity(v.Severity)

		if _, err := s.repo.Upsert(ctx, v); err != nil {
			s.logger.Error("Failed to load vulnerability", "cve_id", v.CVEID, "error", err)
			res.Failed++
			continue
		}
		res.Loaded++
	}

	s.logger.Info("Vulnerabilities loaded", "loaded", res.Loaded, "failed", res.Failed)
	return res
}

// ReferenceVulnerabilities is the catalogue a fresh database starts with.
func ReferenceVulnerabilities() []domain.VulnerabilityRecord {
	return []domain.VulnerabilityRecord{
		{
			CVEID:             "CVE-2024-1234",
			Title:             "Critical SQL Injection in Lab Management Software",
			Description:       "A critical SQL injection vulnerability allows remote attackers to execute arbitrary SQL commands.",
			Severity:          domain.SeverityCritical,
			CVSSScore:         domain.Float(9.8),
			BioRelevanceScore: domain.Float(0.92),
			PriorityScore:     domain.Float(9.5),
			Source:            "EU-CERT",
			SourceCredibility: "High",
			BiotechRelevance:  "Very High",
			BiologicalImpact:  "Compromise of research data could lead to intellectual property theft, delayed drug development, or contamination protocols being exposed.",
			HumanImpact:       "Potential exposure of patient data in clinical trials. Research delays could impact patient treatments.",
			DiscoveredDate:    "2024-01-15",
			AffectedSystems:   []string{"Lab Management Systems", "Research Databases"},
			AIRating:          domain.Float(9.5),
		},
		{
			CVEID:             "CVE-2024-1235",
			Title:             "Remote Code Execution in DNA Analysis Tools",
			Description:       "Remote code execution vulnerability in popular DNA sequencing software.",
			Severity:          domain.SeverityCritical,
			CVSSScore:         domain.Float(9.5),
			BioRelevanceScore: domain.Float(0.98),
			PriorityScore:     domain.Float(9.7),
			Source:            "CVE Database",
			SourceCredibility: "High",
			BiotechRelevance:  "Very High",
			BiologicalImpact:  "Attacker could manipulate DNA sequencing results, leading to incorrect research conclusions, contaminated samples, or compromised genetic data integrity.",
			HumanImpact:       "Critical: Incorrect sequencing could lead to misdiagnosis, wrong treatments, or compromised patient safety in clinical applications.",
			SoleSourceFlag:    true,
			DiscoveredDate:    "2024-01-14",
			AffectedSystems:   []string{"DNA Analysis Tools", "Sequencing Software"},
			AIRating:          domain.Float(9.7),
		},
		{
			CVEID:             "CVE-2024-1236",
			Title:             "Authentication Bypass in Medical Research Platform",
			Description:       "Authentication bypass allows unauthorized access to sensitive research data.",
			Severity:          domain.SeverityHigh,
			CVSSScore:         domain.Float(8.2),
			BioRelevanceScore: domain.Float(0.85),
			PriorityScore:     domain.Float(8.4),
			Source:            "EU-CERT",
			SourceCredibility: "Very High",
			BiotechRelevance:  "High",
			BiologicalImpact:  "Unauthorized access to clinical trial data could compromise research integrity, expose patient information, or allow data manipulation.",
			HumanImpact:       "Patient privacy violation. Potential for research fraud or data tampering affecting treatment outcomes.",
			DiscoveredDate:    "2024-01-13",
			AffectedSystems:   []string{"Medical Research Platforms", "Clinical Trial Systems"},
			AIRating:          domain.Float(8.4),
		},
		{
			CVEID:             "CVE-2024-1237",
			Title:             "Cross-Site Scripting in Patient Data Portal",
			Description:       "XSS vulnerability could allow attackers to steal patient information.",
			Severity:          domain.SeverityMedium,
			CVSSScore:         domain.Float(6.5),
			BioRelevanceScore: domain.Float(0.65),
			PriorityScore:     domain.Float(6.8),
			Source:            "CVE Database",
			SourceCredibility: "High",
			BiotechRelevance:  "Medium",
			BiologicalImpact:  "Limited direct biological impact, but patient data exposure could lead to privacy violations.",
			HumanImpact:       "Patient privacy concerns. Potential for identity theft or medical record tampering.",
			DiscoveredDate:    "2024-01-12",
			AffectedSystems:   []string{"Patient Portals", "Healthcare Systems"},
			AIRating:          domain.Float(6.8),
		},
		{
			CVEID:             "CVE-2024-1238",
			Title:             "Privilege Escalation in Lab Equipment Control",
			Description:       "Privilege escalation vulnerability in laboratory equipment control software.",
			Severity:          domain.SeverityHigh,
			CVSSScore:         domain.Float(7.8),
			BioRelevanceScore: domain.Float(0.88),
			PriorityScore:     domain.Float(8.1),
			Source:            "EU-CERT",
			SourceCredibility: "Very High",
			BiotechRelevance:  "High",
			BiologicalImpact:  "Attacker could gain control of lab equipment, potentially altering experiment parameters, contaminating samples, or disrupting critical research processes.",
			HumanImpact:       "Equipment manipulation could lead to incorrect research results, sample contamination, or safety hazards in labs handling hazardous materials.",
			DiscoveredDate:    "2024-01-11",
			AffectedSystems:   []string{"Lab Equipment", "Automation Systems"},
			AIRating:          domain.Float(8.1),
		},
	}
}
