package projects

import (
	"github.com/caio-sobreiro/bidsheuristic/heuristic"
	"github.com/caio-sobreiro/bidsheuristic/sessions"
	"github.com/caio-sobreiro/bidsheuristic/types"
)

// PNCLabel is the Flywheel label of the PNC LG project.
const PNCLabel = "PNC_LG_810336"

// PNCKeys are the output keys of the PNC LG heuristic. Some keys share a
// template and therefore a bucket: the two magnitude keys, and RestBold124
// with RestBold204.
var PNCKeys = struct {
	T1w             types.OutputKey
	T2w             types.OutputKey
	MagnitudeSingle types.OutputKey
	PhaseSingle     types.OutputKey
	MagnitudeMulti  types.OutputKey
	PhaseMulti      types.OutputKey
	RestBold100     types.OutputKey
	RestBold124     types.OutputKey
	RestBold204     types.OutputKey
	DWIRun1         types.OutputKey
	DWIRun2         types.OutputKey
	Frac2Back       types.OutputKey
	IDemo           types.OutputKey
	ASL             types.OutputKey
	M0              types.OutputKey
}{
	T1w:             heuristic.MustCreateKey("sub-{subject}/{session}/anat/sub-{subject}_{session}_T1w"),
	T2w:             heuristic.MustCreateKey("sub-{subject}/{session}/anat/sub-{subject}_{session}_T2w"),
	MagnitudeSingle: heuristic.MustCreateKey("sub-{subject}/{session}/fmap/sub-{subject}_{session}_magnitude{item}"),
	PhaseSingle:     heuristic.MustCreateKey("sub-{subject}/{session}/fmap/sub-{subject}_{session}_phasediff"),
	MagnitudeMulti:  heuristic.MustCreateKey("sub-{subject}/{session}/fmap/sub-{subject}_{session}_magnitude{item}"),
	PhaseMulti:      heuristic.MustCreateKey("sub-{subject}/{session}/fmap/sub-{subject}_{session}_phase{item}"),
	RestBold100:     heuristic.MustCreateKey("sub-{subject}/{session}/func/sub-{subject}_{session}_task-rest_acq-100_bold"),
	RestBold124:     heuristic.MustCreateKey("sub-{subject}/{session}/func/sub-{subject}_{session}_task-rest_acq-singleband_bold"),
	RestBold204:     heuristic.MustCreateKey("sub-{subject}/{session}/func/sub-{subject}_{session}_task-rest_acq-singleband_bold"),
	DWIRun1:         heuristic.MustCreateKey("sub-{subject}/{session}/dwi/sub-{subject}_{session}_run-01_dwi"),
	DWIRun2:         heuristic.MustCreateKey("sub-{subject}/{session}/dwi/sub-{subject}_{session}_run-02_dwi"),
	Frac2Back:       heuristic.MustCreateKey("sub-{subject}/{session}/func/sub-{subject}_{session}_task-frac2back"),
	IDemo:           heuristic.MustCreateKey("sub-{subject}/{session}/func/sub-{subject}_{session}_task-idemo"),
	ASL:             heuristic.MustCreateKey("sub-{subject}/{session}/asl/sub-{subject}_{session}_asl"),
	M0:              heuristic.MustCreateKey("sub-{subject}/{session}/asl/sub-{subject}_{session}_m0"),
}

// PNCIndex reproduces the PNC LG session numbering: sessions sorted by
// timestamp, numbered from 2, subjects grouped by six-digit padded label.
var PNCIndex = sessions.Options{
	Project:      PNCLabel,
	Prefix:       "PNC",
	SortKey:      sessions.SortByTimestamp,
	FirstOrdinal: 2,
	Subjects:     sessions.SubjectsFromProject,
	SubjectPad:   6,
}

// pncFieldMapTargets are the scans every PNC field map is applied to.
var pncFieldMapTargets = []string{
	"{session}/func/sub-{subject}_{session}_task-rest_acq-100_bold.nii.gz",
	"{session}/func/sub-{subject}_{session}_task-rest_acq-singleband_bold.nii.gz",
	"{session}/dwi/sub-{subject}_{session}_run-01_dwi.nii.gz",
	"{session}/dwi/sub-{subject}_{session}_run-02_dwi.nii.gz",
	"{session}/func/sub-{subject}_{session}_task-frac2back.nii.gz",
	"{session}/func/sub-{subject}_{session}_task-idemo.nii.gz",
}

func pncRules() []heuristic.Rule {
	k := PNCKeys
	p := heuristic.ProtocolContains
	multiband := heuristic.DescriptionContains("onesizefitsall")

	return []heuristic.Rule{
		// anatomical
		heuristic.Then("t1w",
			heuristic.All(p("mprage"), heuristic.Not(p("nav")),
				heuristic.Not(heuristic.ImageType("MOSAIC")),
				heuristic.Not(heuristic.ImageType("DERIVED"))),
			k.T1w),
		heuristic.Then("t2w", p("t2_sag"), k.T2w),

		// field maps
		heuristic.Switch("fmap-magnitude",
			heuristic.All(p("b0map"), heuristic.ImageType("M")),
			heuristic.Case(multiband, k.MagnitudeMulti),
			heuristic.Otherwise(k.MagnitudeSingle)),
		heuristic.Switch("fmap-phase",
			heuristic.All(p("b0map"), heuristic.ImageType("P")),
			heuristic.Case(multiband, k.PhaseMulti),
			heuristic.Otherwise(k.PhaseSingle)),

		// diffusion
		heuristic.Switch("dwi",
			heuristic.All(p("dti"), heuristic.Not(heuristic.Derived())),
			heuristic.Case(p("35"), k.DWIRun1),
			heuristic.Case(p("36"), k.DWIRun2)),

		// perfusion
		heuristic.Switch("asl", p("pcasl"),
			heuristic.Case(heuristic.DescriptionHasSuffix("_M0"), k.M0),
			heuristic.Case(heuristic.DescriptionContains("MoCo"), k.ASL)),

		// task and rest fMRI
		heuristic.Then("frac2back", p("frac2back"), k.Frac2Back),
		heuristic.Then("idemo", p("idemo"), k.IDemo),
		heuristic.Switch("rest-bold", p("restbold"),
			heuristic.Case(p("100"), k.RestBold100),
			heuristic.Case(p("124"), k.RestBold124),
			heuristic.Case(p("204"), k.RestBold204)),
	}
}

// PNC returns the PNC LG project definition. Series no rule claims are
// reported through the heuristic's logger.
func PNC(opts ...heuristic.Option) (*Project, error) {
	k := PNCKeys
	keys := []types.OutputKey{
		k.T1w, k.T2w,
		k.DWIRun1, k.DWIRun2,
		k.MagnitudeSingle, k.PhaseSingle,
		k.MagnitudeMulti, k.PhaseMulti,
		k.RestBold100, k.RestBold124, k.RestBold204,
		k.Frac2Back, k.IDemo,
		k.M0, k.ASL,
	}
	base := []heuristic.Option{
		heuristic.WithUnrecognizedReport(),
		heuristic.WithIntendedFor(k.MagnitudeMulti, pncFieldMapTargets...),
		heuristic.WithIntendedFor(k.PhaseMulti, pncFieldMapTargets...),
		heuristic.WithIntendedFor(k.MagnitudeSingle, pncFieldMapTargets...),
		heuristic.WithIntendedFor(k.PhaseSingle, pncFieldMapTargets...),
	}

	h, err := heuristic.New(PNCLabel, keys, pncRules(), append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Project{Heuristic: h, Index: PNCIndex}, nil
}
