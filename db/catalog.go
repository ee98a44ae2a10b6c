/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"fmt"
	"strings"
)

// ReferenceRangeDefinition represents a curated reference range to be
// synced to the database, keyed by biomarker name.
type ReferenceRangeDefinition struct {
	BiomarkerName string
	Type          RangeType
	LowerBound    *float64
	UpperBound    *float64
}

// ptr is a helper to create pointers to float64 literals
func ptr(f float64) *float64 {
	return &f
}

// defaultBiomarkers is the catalogue seeded into an empty database so a
// fresh install starts with something to record against.
var defaultBiomarkers = []struct {
	name     string
	unit     string
	category string
}{
	// Blood
	{"Hemoglobin", "g/dL", "Blood"},
	{"Hematocrit", "%", "Blood"},
	{"White Blood Cell Count", "cells/μL", "Blood"},
	{"Platelet Count", "cells/μL", "Blood"},
	{"Red Blood Cell Count", "cells/μL", "Blood"},

	// Lipids
	{"Total Cholesterol", "mg/dL", "Lipids"},
	{"HDL Cholesterol", "mg/dL", "Lipids"},
	{"LDL Cholesterol", "mg/dL", "Lipids"},
	{"Triglycerides", "mg/dL", "Lipids"},

	// Metabolic
	{"Glucose (Fasting)", "mg/dL", "Metabolic"},
	{"HbA1c", "%", "Metabolic"},
	{"Insulin", "μIU/mL", "Metabolic"},

	// Liver
	{"ALT", "U/L", "Liver"},
	{"AST", "U/L", "Liver"},
	{"Alkaline Phosphatase", "U/L", "Liver"},
	{"Total Bilirubin", "mg/dL", "Liver"},

	// Kidney
	{"Creatinine", "mg/dL", "Kidney"},
	{"BUN", "mg/dL", "Kidney"},
	{"eGFR", "mL/min/1.73m²", "Kidney"},

	// Electrolytes
	{"Sodium", "mmol/L", "Electrolytes"},
	{"Potassium", "mmol/L", "Electrolytes"},
	{"Chloride", "mmol/L", "Electrolytes"},
	{"Calcium", "mg/dL", "Electrolytes"},

	// Vitamins and minerals
	{"Vitamin D", "ng/mL", "Vitamins"},
	{"Vitamin B12", "pg/mL", "Vitamins"},
	{"Iron", "μg/dL", "Minerals"},
	{"Ferritin", "ng/mL", "Minerals"},

	// Hormones
	{"TSH", "mIU/L", "Hormones"},
	{"Free T4", "ng/dL", "Hormones"},
	{"Cortisol", "μg/dL", "Hormones"},

	// Inflammation
	{"C-Reactive Protein", "mg/L", "Inflammation"},
	{"ESR", "mm/hr", "Inflammation"},
}

// SeedDefaultBiomarkers inserts the default biomarker catalogue when
// the Biomarkers table is empty, and reports how many were added. A
// non-empty table is left untouched.
func (s *Store) SeedDefaultBiomarkers(ctx context.Context) (int, error) {
	count, err := s.CountBiomarkers(ctx)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		return 0, nil
	}

	seeded := 0
	for _, b := range defaultBiomarkers {
		category := b.category
		if _, err := s.AddBiomarker(ctx, b.name, b.unit, &category); err != nil {
			return seeded, fmt.Errorf("failed to seed biomarker %q: %w", b.name, err)
		}
		seeded++
	}

	return seeded, nil
}

// GetReferenceRangeDefinitions returns the curated reference ranges.
// This is the authoritative source of truth for the seed-ranges
// command; values follow Australian pathology conventions and SI units.
func GetReferenceRangeDefinitions() []ReferenceRangeDefinition {
	return []ReferenceRangeDefinition{
		// ===== LIPID PROFILE (mmol/L) =====
		{BiomarkerName: "HDL Cholesterol", Type: RangeAbove, LowerBound: ptr(0.9)},
		{BiomarkerName: "LDL Cholesterol", Type: RangeBelow, UpperBound: ptr(3.1)},
		{BiomarkerName: "Non-HDL Cholesterol", Type: RangeBelow, UpperBound: ptr(4.1)},
		{BiomarkerName: "Triglycerides", Type: RangeBelow, UpperBound: ptr(2.1)},
		{BiomarkerName: "VLDL", Type: RangeBetween, LowerBound: ptr(0.16), UpperBound: ptr(0.67)},
		{BiomarkerName: "Total LDL", Type: RangeBetween, LowerBound: ptr(1.53), UpperBound: ptr(3.32)},
		{BiomarkerName: "Total IDL", Type: RangeBetween, LowerBound: ptr(0.52), UpperBound: ptr(1.73)},
		{BiomarkerName: "Total Small Dense LDL", Type: RangeBetween, LowerBound: ptr(0), UpperBound: ptr(0.15)},
		{BiomarkerName: "Small Dense LDL 3", Type: RangeBetween, LowerBound: ptr(0), UpperBound: ptr(0.15)},

		// ===== BLOOD SUGAR =====
		{BiomarkerName: "Glucose (Fasting)", Type: RangeBetween, LowerBound: ptr(3), UpperBound: ptr(5.4)},
		{BiomarkerName: "DCCT HbA1c", Type: RangeBelow, UpperBound: ptr(6.5)},

		// ===== KIDNEY FUNCTION =====
		{BiomarkerName: "Creatinine", Type: RangeBetween, LowerBound: ptr(60), UpperBound: ptr(110)},
		{BiomarkerName: "eGFR", Type: RangeAbove, LowerBound: ptr(59)},
		{BiomarkerName: "BUN (Blood Urea Nitrogen)", Type: RangeBetween, LowerBound: ptr(3.5), UpperBound: ptr(8)},
		{BiomarkerName: "Uric Acid", Type: RangeBetween, LowerBound: ptr(0.21), UpperBound: ptr(0.43)},

		// ===== LIVER FUNCTION =====
		{BiomarkerName: "AST (SGOT)", Type: RangeBetween, LowerBound: ptr(5), UpperBound: ptr(35)},
		{BiomarkerName: "ALT (SGPT)", Type: RangeBetween, LowerBound: ptr(5), UpperBound: ptr(40)},
		{BiomarkerName: "Globulin", Type: RangeBetween, LowerBound: ptr(23), UpperBound: ptr(39)},
		{BiomarkerName: "ALP (Alkaline Phosphatase)", Type: RangeBetween, LowerBound: ptr(30), UpperBound: ptr(110)},
		{BiomarkerName: "Bilirubin (Total)", Type: RangeBetween, LowerBound: ptr(3), UpperBound: ptr(20)},
		{BiomarkerName: "Gamma GT", Type: RangeBetween, LowerBound: ptr(5), UpperBound: ptr(50)},
		{BiomarkerName: "Total Protein", Type: RangeBetween, LowerBound: ptr(60), UpperBound: ptr(80)},
		{BiomarkerName: "Albumin", Type: RangeBetween, LowerBound: ptr(35), UpperBound: ptr(50)},

		// ===== ELECTROLYTES =====
		{BiomarkerName: "Sodium", Type: RangeBetween, LowerBound: ptr(135), UpperBound: ptr(145)},
		{BiomarkerName: "Potassium", Type: RangeBetween, LowerBound: ptr(3.5), UpperBound: ptr(5.2)},
		{BiomarkerName: "Chloride", Type: RangeBetween, LowerBound: ptr(95), UpperBound: ptr(110)},
		{BiomarkerName: "Calcium", Type: RangeBetween, LowerBound: ptr(2.1), UpperBound: ptr(2.6)},
		{BiomarkerName: "Adjusted Calcium", Type: RangeBetween, LowerBound: ptr(2.1), UpperBound: ptr(2.6)},
		{BiomarkerName: "Phosphate", Type: RangeBetween, LowerBound: ptr(0.7), UpperBound: ptr(1.5)},
		{BiomarkerName: "Magnesium", Type: RangeBetween, LowerBound: ptr(0.7), UpperBound: ptr(1.1)},
		{BiomarkerName: "Bicarbonate", Type: RangeBetween, LowerBound: ptr(22), UpperBound: ptr(32)},
		{BiomarkerName: "Anion Gap", Type: RangeBetween, LowerBound: ptr(9), UpperBound: ptr(19)},

		// ===== COMPLETE BLOOD COUNT =====
		{BiomarkerName: "White Blood Cell (WBC) Count", Type: RangeBetween, LowerBound: ptr(4), UpperBound: ptr(11)},
		{BiomarkerName: "Red Blood Cell (RBC) Count", Type: RangeBetween, LowerBound: ptr(4.5), UpperBound: ptr(6.5)},
		{BiomarkerName: "Haemoglobin", Type: RangeBetween, LowerBound: ptr(125), UpperBound: ptr(175)},
		{BiomarkerName: "Hematocrit (HCT)", Type: RangeBetween, LowerBound: ptr(0.4), UpperBound: ptr(0.55)},
		{BiomarkerName: "Platelet Count", Type: RangeBetween, LowerBound: ptr(150), UpperBound: ptr(450)},
		{BiomarkerName: "Mean Corpuscular Volume (MCV)", Type: RangeBetween, LowerBound: ptr(80), UpperBound: ptr(99)},
		{BiomarkerName: "Mean Corpuscular Hemoglobin (MCH)", Type: RangeBetween, LowerBound: ptr(27), UpperBound: ptr(34)},
		{BiomarkerName: "Mean Corpuscular Hemoglobin Concentration (MCHC)", Type: RangeBetween, LowerBound: ptr(310), UpperBound: ptr(360)},
		{BiomarkerName: "Red Cell Distribution Width (RDW)", Type: RangeBetween, LowerBound: ptr(11), UpperBound: ptr(15)},
		{BiomarkerName: "Neutrophils", Type: RangeBetween, LowerBound: ptr(2), UpperBound: ptr(8)},
		{BiomarkerName: "Lymphocytes", Type: RangeBetween, LowerBound: ptr(1), UpperBound: ptr(4)},
		{BiomarkerName: "Monocytes", Type: RangeBelow, UpperBound: ptr(1.1)},
		{BiomarkerName: "Eosinophils", Type: RangeBelow, UpperBound: ptr(0.7)},
		{BiomarkerName: "Basophils", Type: RangeBelow, UpperBound: ptr(0.3)},
		{BiomarkerName: "MPV", Type: RangeBetween, LowerBound: ptr(7.1), UpperBound: ptr(11.2)},

		// ===== THYROID FUNCTION =====
		{BiomarkerName: "TSH (Thyroid Stimulating Hormone)", Type: RangeBetween, LowerBound: ptr(0.4), UpperBound: ptr(4)},
		{BiomarkerName: "Free T4", Type: RangeBetween, LowerBound: ptr(9), UpperBound: ptr(20)},
		{BiomarkerName: "Free T3", Type: RangeBetween, LowerBound: ptr(3.5), UpperBound: ptr(6.5)},

		// ===== INFLAMMATION MARKERS =====
		{BiomarkerName: "hsCRP", Type: RangeBelow, UpperBound: ptr(1)},
		{BiomarkerName: "Homocysteine (Fasting)", Type: RangeBelow, UpperBound: ptr(10)},

		// ===== VITAMINS AND MINERALS =====
		{BiomarkerName: "Vitamin D", Type: RangeAbove, LowerBound: ptr(50)},
		{BiomarkerName: "Vitamin B12", Type: RangeAbove, LowerBound: ptr(180)},
		{BiomarkerName: "Folate", Type: RangeAbove, LowerBound: ptr(10)},
		{BiomarkerName: "Ferritin", Type: RangeBetween, LowerBound: ptr(30), UpperBound: ptr(500)},
		{BiomarkerName: "Iron", Type: RangeBetween, LowerBound: ptr(10), UpperBound: ptr(30)},
		{BiomarkerName: "Transferrin", Type: RangeBetween, LowerBound: ptr(2.1), UpperBound: ptr(3.8)},
		{BiomarkerName: "Transferrin Saturation", Type: RangeBetween, LowerBound: ptr(15), UpperBound: ptr(50)},

		// ===== HORMONES =====
		{BiomarkerName: "Luteinizing Hormone", Type: RangeBelow, UpperBound: ptr(6)},
		{BiomarkerName: "Follicle Stimulating Hormone", Type: RangeBetween, LowerBound: ptr(2), UpperBound: ptr(18)},
		{BiomarkerName: "Testosterone", Type: RangeBetween, LowerBound: ptr(8), UpperBound: ptr(27.8)},
		{BiomarkerName: "Estradiol", Type: RangeBelow, UpperBound: ptr(150)},
		{BiomarkerName: "Prolactin", Type: RangeBetween, LowerBound: ptr(45), UpperBound: ptr(375)},
		{BiomarkerName: "DHEA-Sulphate", Type: RangeBetween, LowerBound: ptr(2.2), UpperBound: ptr(15.2)},
		{BiomarkerName: "Free Testosterone", Type: RangeBetween, LowerBound: ptr(200), UpperBound: ptr(600)},
		{BiomarkerName: "SHBG (Sex Hormone Binding Globulin)", Type: RangeBetween, LowerBound: ptr(15), UpperBound: ptr(50)},
		{BiomarkerName: "Insulin-Like Growth Factor", Type: RangeBetween, LowerBound: ptr(8.2), UpperBound: ptr(29)},
		{BiomarkerName: "Insulin (Fasting)", Type: RangeBetween, LowerBound: ptr(2), UpperBound: ptr(12)},
	}
}

// RangeSyncResult summarises a SyncReferenceRanges run.
type RangeSyncResult struct {
	Added   int
	Updated int
	Skipped int
}

// SyncReferenceRanges applies the curated reference range definitions
// to the stored biomarkers. Biomarkers are matched by name, case
// insensitively; definitions naming an unknown biomarker are skipped.
func (s *Store) SyncReferenceRanges(ctx context.Context) (RangeSyncResult, error) {
	var result RangeSyncResult

	definitions := GetReferenceRangeDefinitions()
	logger.Infof("Syncing %d reference range definitions to database...", len(definitions))

	biomarkers, err := s.AllBiomarkers(ctx)
	if err != nil {
		return result, err
	}

	byName := make(map[string]int64, len(biomarkers))
	for _, b := range biomarkers {
		byName[strings.ToLower(b.Name)] = b.ID
	}

	for _, def := range definitions {
		id, ok := byName[strings.ToLower(def.BiomarkerName)]
		if !ok {
			logger.Debug("Skipping reference range, biomarker not found", "name", def.BiomarkerName)
			result.Skipped++

			continue
		}

		existing, err := s.ReferenceRangeForBiomarker(ctx, id)
		if err != nil {
			return result, fmt.Errorf("failed to sync reference range for %s: %w", def.BiomarkerName, err)
		}

		if existing != nil {
			err = s.UpdateReferenceRange(ctx, existing.ID, def.Type, def.LowerBound, def.UpperBound)
			if err != nil {
				return result, fmt.Errorf("failed to sync reference range for %s: %w", def.BiomarkerName, err)
			}
			result.Updated++
		} else {
			_, err = s.AddReferenceRange(ctx, id, def.Type, def.LowerBound, def.UpperBound)
			if err != nil {
				return result, fmt.Errorf("failed to sync reference range for %s: %w", def.BiomarkerName, err)
			}
			result.Added++
		}
	}

	logger.Infof("Successfully synced %d reference ranges (%d added, %d updated, %d skipped)",
		result.Added+result.Updated, result.Added, result.Updated, result.Skipped)

	return result, nil
}
