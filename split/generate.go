package split

import (
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/Noofbiz/samraman/arrays"
	"github.com/Noofbiz/samraman/labels"
)

// labelGroup is the rows of one source that carry one raw label, in file
// order.
type labelGroup struct {
	label labels.Label
	rows  [][]float64
}

// groupByLabel groups the rows of spectra by their raw label. Groups are
// returned in ascending label order.
func groupByLabel(spectra *mat.Dense, ls []labels.Label) []labelGroup {
	rows := arrays.Rows(spectra)
	byLabel := make(map[labels.Label][][]float64)
	for i, l := range ls {
		byLabel[l] = append(byLabel[l], rows[i])
	}

	groups := make([]labelGroup, 0, len(byLabel))
	for l, rs := range byLabel {
		groups = append(groups, labelGroup{label: l, rows: rs})
	}
	slices.SortFunc(groups, func(a, b labelGroup) int { return labels.Compare(a.label, b.label) })
	return groups
}

// splitGenerate partitions every source by patient block. Within each
// (source, label) group, the patient indices are permuted and cut into
// contiguous train, validation and test ranges.
func (s *Splitter) splitGenerate() error {
	for i, spectralPath := range s.cfg.SpectralPaths {
		labelPath := s.cfg.LabelPaths[i]
		interval := s.cfg.PatientIntervals[i]

		spectra, ls, err := arrays.LoadPair(spectralPath, labelPath)
		if err != nil {
			return err
		}

		for _, g := range groupByLabel(spectra, ls) {
			code, err := s.labels.Encode(g.label)
			if err != nil {
				return err
			}

			numPatients := len(g.rows) / interval
			if dropped := len(g.rows) % interval; dropped > 0 {
				s.logger.Debug("dropping samples that do not fill a patient block",
					"source", spectralPath, "label", g.label.String(), "dropped", dropped, "interval", interval)
			}

			patients := s.rng.Perm(numPatients)
			trainEnd := int(s.cfg.TrainFraction * float64(numPatients))
			valEnd := int((s.cfg.TrainFraction + s.cfg.ValidationFraction) * float64(numPatients))

			for k, patient := range patients {
				block := g.rows[patient*interval : patient*interval+interval]
				switch {
				case k < trainEnd:
					s.train.appendSamples(block, code)
				case k < valEnd:
					s.val.appendSamples(block, code)
				default:
					s.test.appendSamples(block, code)
				}
			}
		}
	}
	return nil
}
