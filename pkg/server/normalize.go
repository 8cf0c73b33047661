package server

import (
	"greenroom/pkg/schema"
)

// The bind layer fills enum fields with whatever strings the client
// sent; each entity is normalized through its Parse functions exactly
// once before it reaches the store.

func normalizeProject(p *schema.Project) error {
	t, err := schema.ParseProjectType(string(p.Type))
	if err != nil {
		return err
	}
	p.Type = t
	st, err := schema.ParseProjectStatus(string(p.Status))
	if err != nil {
		return err
	}
	p.Status = st
	return nil
}

func normalizeEpisode(e *schema.Episode) error {
	st, err := schema.ParseEpisodeStatus(string(e.Status))
	if err != nil {
		return err
	}
	e.Status = st
	return nil
}

func normalizeScene(sc *schema.Scene) error {
	t, err := schema.ParseSceneType(string(sc.Type))
	if err != nil {
		return err
	}
	sc.Type = t
	ct, err := schema.ParseConflictType(string(sc.ConflictType))
	if err != nil {
		return err
	}
	sc.ConflictType = ct
	d, err := schema.ParseDialogDensity(string(sc.DialogDensity))
	if err != nil {
		return err
	}
	sc.DialogDensity = d
	for i, stage := range sc.EmotionCurve {
		parsed, err := schema.ParseEmotionCurve(string(stage))
		if err != nil {
			return err
		}
		sc.EmotionCurve[i] = parsed
	}
	return nil
}

func normalizeCharacter(ch *schema.Character) error {
	r, err := schema.ParseCharacterRole(string(ch.Role))
	if err != nil {
		return err
	}
	ch.Role = r
	return nil
}

func normalizeCallback(cb *schema.Callback) error {
	imp, err := schema.ParseImportance(string(cb.Importance))
	if err != nil {
		return err
	}
	cb.Importance = imp
	return nil
}
