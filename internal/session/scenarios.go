package session

import (
	"sort"
)

const testFile = "f.py"

var availableFixtures = []string{
	"cache", "capfd", "capfdbinary", "caplog", "capsys", "capsysbinary",
	"doctest_namespace", "monkeypatch", "pytestconfig", "record_property",
	"record_testsuite_property", "record_xml_attribute", "recwarn",
	"tmp_path", "tmp_path_factory", "tmpdir", "tmpdir_factory",
}

func userWarning(line int) *Warning {
	return &Warning{
		Path:     testFile,
		Line:     line,
		Category: "UserWarning",
		Message:  "WARNING!",
		Source:   `warnings.warn(UserWarning("WARNING!"))`,
	}
}

func assertFailure(lines []string, lineno int) *Failure {
	return &Failure{Chain: []Traceback{{
		Entries: []Entry{{Lines: lines, Path: testFile, Lineno: lineno, Message: "AssertionError"}},
	}}}
}

// differentTypes covers every outcome pytest reports, in file order.
func differentTypes() []Test {
	return []Test{
		{
			Name: "test_answer", Line: 7, Outcome: Failed,
			Message: "assert 4 == 5\n +  where 4 = inc(3)",
			Failure: assertFailure([]string{
				"    def test_answer():",
				">       assert inc(3) == 5",
				"E       assert 4 == 5",
				"E        +  where 4 = inc(3)",
			}, 8),
		},
		{
			Name: "test_fail_stack", Line: 13, Outcome: Failed,
			Message: "RuntimeError: error!",
			Failure: &Failure{Chain: []Traceback{{Entries: []Entry{
				{
					Lines:  []string{"    def test_fail_stack():", ">       fail2()"},
					Path:   testFile,
					Lineno: 14,
				},
				{
					Lines: []string{
						"    def fail2():",
						">       raise RuntimeError('error!')",
						"E       RuntimeError: error!",
					},
					Path:    testFile,
					Lineno:  11,
					Message: "RuntimeError",
				},
			}}}},
		},
		{Name: "test", Line: 16, Outcome: Passed},
		{Name: "test_skip", Line: 19, Outcome: Skipped},
		{Name: "test_xfail", Line: 21, Outcome: XFailed},
		{Name: "test_Xxfail", Line: 24, Outcome: XPassed},
		{
			Name: "test_error", Line: 32, Outcome: Errored,
			Message: "Exception: boom!",
			Failure: &Failure{Chain: []Traceback{{Entries: []Entry{{
				Lines: []string{
					"    @pytest.fixture",
					"    def s():",
					">       raise Exception('boom!')",
					"E       Exception: boom!",
				},
				Path:    testFile,
				Lineno:  30,
				Message: "Exception",
			}}}}},
		},
		{Name: "test_warning", Line: 35, Outcome: Passed, Warning: userWarning(36)},
	}
}

func withoutTest(tests []Test, name string) []Test {
	out := make([]Test, 0, len(tests))
	for _, t := range tests {
		if t.Name != name {
			out = append(out, t)
		}
	}
	return out
}

var scenarios = map[string]func() *Session{
	"simple_test_passing": func() *Session {
		return &Session{Tests: []Test{{Name: "test", Line: 1, Outcome: Passed}}, Duration: 0.01}
	},

	"warnings": func() *Session {
		return &Session{
			Tests:    []Test{{Name: "test", Line: 2, Outcome: Passed, Warning: userWarning(3)}},
			Duration: 0.01,
		}
	},

	"different_test_types": func() *Session {
		return &Session{Tests: differentTypes(), Duration: 0.05}
	},

	"too_long_summary_line": func() *Session {
		return &Session{
			Tests:      withoutTest(differentTypes(), "test_fail_stack"),
			Deselected: 1,
			ExtraArgs:  []string{"-k", "not stack"},
			Duration:   0.05,
		}
	},

	"no_tests": func() *Session {
		return &Session{Duration: 0.00}
	},

	"blank_code_line": func() *Session {
		return &Session{
			Tests: []Test{{
				Name: "test", Line: 1, Outcome: Failed,
				Message: "assert False",
				Failure: assertFailure([]string{
					"    def test():",
					"        ",
					">       assert False",
					"E       assert False",
				}, 3),
			}},
			Duration: 0.02,
		}
	},

	"only_skips": func() *Session {
		return &Session{
			Tests:    []Test{{Name: "test", Line: 2, Outcome: Skipped, Reason: "unconditional skip"}},
			Duration: 0.01,
		}
	},

	"only_xpass": func() *Session {
		return &Session{Tests: []Test{{Name: "test", Line: 2, Outcome: XPassed}}, Duration: 0.01}
	},

	"only_xfail": func() *Session {
		return &Session{Tests: []Test{{Name: "test", Line: 2, Outcome: XFailed}}, Duration: 0.02}
	},

	"fail_with_class": func() *Session {
		return &Session{
			Tests: []Test{{
				Name: "TestThing::test_fail", Line: 2, Outcome: Failed,
				Message: "assert False",
				Failure: &Failure{Chain: []Traceback{{Entries: []Entry{{
					Args:    []string{"self = <f.TestThing object at 0x7f3a2b1c9d50>"},
					Lines:   []string{">   def test_fail(self): assert False", "E   assert False"},
					Path:    testFile,
					Lineno:  2,
					Message: "AssertionError",
				}}}}},
			}},
			Duration: 0.02,
		}
	},

	"collection_failure_syntax_error": func() *Session {
		return &Session{
			CollectionError: &CollectionError{
				Path: testFile,
				Body: "/usr/lib/python3/dist-packages/_pytest/python.py:493: in importtestmodule\n" +
					"    mod = import_path(\n" +
					"/usr/lib/python3/dist-packages/_pytest/pathlib.py:582: in import_path\n" +
					"    importlib.import_module(module_name)\n" +
					"/usr/lib/python3.12/importlib/__init__.py:90: in import_module\n" +
					"    return _bootstrap._gcd_import(name[level:], package, level)\n" +
					"<frozen importlib._bootstrap>:1387: in _gcd_import\n" +
					"    ???\n" +
					"E     File \"/tmp/pytest-of-user/pytest-0/test_collection_failure_syntax_error0/f.py\", line 1\n" +
					"E       (\n" +
					"E       ^\n" +
					"E   SyntaxError: '(' was never closed",
			},
			Duration: 0.08,
		}
	},

	"collection_unknown_fixture": func() *Session {
		return &Session{
			Tests: []Test{{
				Name: "test", Line: 1, Outcome: Errored,
				Failure: &Failure{FixtureLookup: &FixtureLookup{
					Path:      testFile,
					Line:      1,
					Source:    []string{"def test(x): pass"},
					Argname:   "x",
					Available: availableFixtures,
				}},
			}},
			Duration: 0.01,
		}
	},

	// Captured output holding lines shaped like traceback and rule lines.
	"chained_exception": func() *Session {
		source := []string{
			"    def test_parse():",
			"        print(\"parsing\")",
			"        print(\"E   not an exception line\")",
			"        print(\"=== not a rule ===\")",
			"        try:",
		}
		return &Session{
			Tests: []Test{{
				Name: "test_parse", Line: 4, Outcome: Failed,
				Message: "RuntimeError: bad input",
				Failure: &Failure{Chain: []Traceback{
					{
						Entries: []Entry{
							{Lines: append(append([]string{}, source...), ">           parse(\"x\")"), Path: testFile, Lineno: 9},
							{
								Args: []string{"s = 'x'"},
								Lines: []string{
									"    def parse(s):",
									">       return int(s)",
									"E       ValueError: invalid literal for int() with base 10: 'x'",
								},
								Path:    testFile,
								Lineno:  2,
								Message: "ValueError",
							},
						},
						Description: DirectCause,
					},
					{Entries: []Entry{{
						Lines: append(append([]string{}, source...),
							"            parse(\"x\")",
							"        except ValueError as exc:",
							">           raise RuntimeError(\"bad input\") from exc",
							"E           RuntimeError: bad input",
						),
						Path:    testFile,
						Lineno:  11,
						Message: "RuntimeError",
					}}},
				}},
				Captured: []Capture{{
					Title:   "Captured stdout call",
					Content: "parsing\nE   not an exception line\n=== not a rule ===\n",
				}},
			}},
			Duration: 0.03,
		}
	},

	"maxfail": func() *Session {
		return &Session{
			Tests: []Test{
				{Name: "test_one", Line: 1, Outcome: Passed},
				{
					Name: "test_two", Line: 4, Outcome: Failed,
					Message: "assert 1 == 2",
					Failure: assertFailure([]string{
						"    def test_two():",
						">       assert 1 == 2",
						"E       assert 1 == 2",
					}, 5),
				},
				{Name: "test_three", Line: 7, Outcome: Passed},
			},
			MaxFail:  1,
			Duration: 0.02,
		}
	},

	"report_chars": func() *Session {
		return &Session{
			Tests: []Test{
				{Name: "test_ok", Line: 3, Outcome: Passed},
				{Name: "test_db", Line: 6, Outcome: Skipped, Reason: "no database"},
				{Name: "test_cache", Line: 6, Outcome: Skipped, Reason: "no database"},
				{Name: "test_bug", Line: 11, Outcome: XFailed, Reason: "bug 12"},
				{Name: "test_flaky", Line: 15, Outcome: XPassed, Reason: "flaky"},
				{
					Name: "test_width", Line: 19, Outcome: Failed,
					Message: "AssertionError: a very long assertion message that cannot fit on the short summary line",
					Failure: &Failure{Chain: []Traceback{{Entries: []Entry{{
						Lines: []string{
							"    def test_width():",
							">       assert 0, \"a very long assertion message that cannot fit on the short summary line\"",
							"E       AssertionError: a very long assertion message that cannot fit on the short summary line",
							"E       assert 0",
						},
						Path:    testFile,
						Lineno:  20,
						Message: "AssertionError",
					}}}}},
				},
			},
			ReportChars: "fEsp",
			Duration:    75,
		}
	},
}

// Scenario returns a fresh copy of the named session.
func Scenario(name string) (*Session, bool) {
	build, ok := scenarios[name]
	if !ok {
		return nil, false
	}
	s := build()
	s.Name = name
	if s.File == "" {
		s.File = testFile
	}
	return s, true
}

// ScenarioNames lists the available scenarios, sorted.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
