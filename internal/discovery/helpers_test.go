package discovery

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"ctr/internal/domain"
)

const (
	gtestScript = `for arg in "$@"; do
  case "$arg" in
    --gtest_list_tests)
      printf 'Running main() from gtest_main.cc\nSuiteA.\n  Test1\n  Test2\nSuiteB.\n  Test3\n'
      exit 0;;
  esac
done
exit 1
`
	gtestJSONScript = `report=
for arg in "$@"; do
  case "$arg" in
    --gtest_output=json:*) report="${arg#--gtest_output=json:}";;
  esac
done
for arg in "$@"; do
  case "$arg" in
    --gtest_list_tests)
      printf 'SuiteA.\n  Test1\n  Test2\n'
      if [ -n "$report" ]; then
        printf '{"testsuites":[{"name":"SuiteA","testsuite":[{"name":"Test1","file":"../src/a_test.cpp","line":7}]}]}' > "$report"
      fi
      exit 0;;
  esac
done
exit 1
`
	catch2Script = `case "$1" in
  --list-test-names-only) printf 'CaseX\nCaseY\n'; exit 2;;
esac
echo "error: unknown option $1" >&2
exit 255
`
	helperScript = `echo "usage: helper <file>" >&2
exit 1
`
)

// writeScript writes an executable shell script into dir
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("failed to write script %s: %v", name, err)
	}
	return path
}

func caseNames(cases []domain.TestCase) []string {
	names := make([]string, len(cases))
	for i, tc := range cases {
		names[i] = tc.Name
	}
	return names
}
