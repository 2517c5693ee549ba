// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package wizard moves a respondent through the survey pages. State is an
// explicit value; loading and saving it are functions supplied by the
// caller, normally backed by the store's wizard_session table. Submit
// hands the closed state and the built responses to a committer that must
// store both atomically:
//
//	w := wizard.New(cat,
//		wizard.JSONLoader(st.LoadSession),
//		wizard.JSONSaver(st.SaveSession),
//		wizard.JSONCommitter(st.SubmitSession))
package wizard
