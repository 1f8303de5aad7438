package converter

import (
	"testing"

	"github.com/spf13/afero"
)

func BenchmarkConvertWiki(b *testing.B) {
	conv, err := New(Config{FS: afero.NewMemMapFs()})
	if err != nil {
		b.Fatalf("failed to create converter: %v", err)
	}

	input := `====== Getting started ======

Read [[:Requirements]] and the [[http://api.silverstripe.org/3.1/DataObject|DataObject]] docs.

  * first step
  * second //step//
  - ordered
  - again

^ Name ^ Value ^
| a | [[docs:intro|Intro]] |

<code php>
$x = "<b>";
</code>

{{:tutorial:home.png?100|Home}}
`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := conv.Convert(input); err != nil {
			b.Fatalf("convert failed: %v", err)
		}
	}
}
