package projects

import (
	"github.com/caio-sobreiro/bidsheuristic/heuristic"
	"github.com/caio-sobreiro/bidsheuristic/sessions"
	"github.com/caio-sobreiro/bidsheuristic/types"
)

// ConteLabel is the Flywheel label of the CONTE project.
const ConteLabel = "CONTE_815814"

// ConteKeys are the output keys of the CONTE heuristic.
var ConteKeys = struct {
	T1w         types.OutputKey
	T1wMoco     types.OutputKey
	RestBold742 types.OutputKey
}{
	T1w:         heuristic.MustCreateKey("sub-{subject}/{session}/anat/sub-{subject}_{session}_T1w"),
	T1wMoco:     heuristic.MustCreateKey("sub-{subject}/{session}/anat/sub-{subject}_{session}_acq-moco_T1w"),
	RestBold742: heuristic.MustCreateKey("sub-{subject}/{session}/func/sub-{subject}_{session}_task-rest_acq-742_bold"),
}

// ConteIndex reproduces the CONTE session numbering: sessions sorted by label,
// numbered from 1, subjects found through the project's sessions.
var ConteIndex = sessions.Options{
	Project:      ConteLabel,
	Prefix:       "CONTE",
	SortKey:      sessions.SortByLabel,
	FirstOrdinal: 1,
	Subjects:     sessions.SubjectsFromSessions,
}

// conteMocoTR is the TR of the motion-corrected MPRAGE, compared exactly.
const conteMocoTR = 1.85

func conteRules() []heuristic.Rule {
	k := ConteKeys
	mprage := heuristic.All(
		heuristic.ProtocolContains("mprage"),
		heuristic.Not(heuristic.ProtocolContains("nav")),
	)
	return []heuristic.Rule{
		heuristic.Then("t1w",
			heuristic.All(mprage, heuristic.Not(heuristic.ProtocolContains("moco"))),
			k.T1w),
		heuristic.Then("t1w-moco",
			heuristic.All(mprage, heuristic.ProtocolContains("moco"), heuristic.RepetitionTime(conteMocoTR)),
			k.T1wMoco),
		heuristic.Then("rest-bold-742",
			heuristic.All(heuristic.ProtocolContains("restbold"), heuristic.ProtocolContains("742")),
			k.RestBold742),
	}
}

// Conte returns the CONTE project definition. Unrecognized series are dropped
// without a report.
func Conte(opts ...heuristic.Option) (*Project, error) {
	k := ConteKeys
	h, err := heuristic.New(ConteLabel,
		[]types.OutputKey{k.T1w, k.T1wMoco, k.RestBold742},
		conteRules(),
		opts...)
	if err != nil {
		return nil, err
	}
	return &Project{Heuristic: h, Index: ConteIndex}, nil
}
