// runtime_test.go
package cobalt

import "testing"

func Test_Runtime_Arithmetic(t *testing.T) {
	cases := []struct {
		expr string
		want Number
	}{
		{"2 + 3 * 4", 14},
		{"10 - 2 - 3", 5},
		{"(2 + 3) * 4", 20},
		{"7 \\ 2", 3},
		{"0 - 7 \\ 2", -3},
		{"7 % 3", 1},
		{"7.5 / 3", 2.5},
		{"1 << 4", 16},
		{"256 >> 4", 16},
		{"12 & 10", 8},
		{"12 | 10", 14},
		{"12 ^ 10", 6},
		{"~0", -1},
		{"!0", 1},
		{"!42", 0},
		{"-5 + 2", -3},
		{"+5", 5},
		{"1 < 2", 1},
		{"2 <= 2", 1},
		{"3 > 4", 0},
		{"2 == 2", 1},
		{"2 != 2", 0},
		{"1 ? 10 : 20", 10},
		{"0 ? 10 : 20", 20},
		{"(1, 2, 3)", 3},
	}
	for _, tc := range cases {
		v := numberMain(t, `
			public function number main() {
				return `+tc.expr+`;
			}
		`)
		wantNumber(t, v, tc.want)
	}
}

func Test_Runtime_StringOperations(t *testing.T) {
	v := stringMain(t, `
		public function string main() {
			return "foo" .. "bar";
		}
	`)
	wantString(t, v, "foobar")

	// Numbers stringify implicitly; integral values print with no
	// fractional part.
	v = stringMain(t, `
		public function string main() {
			return 2 + 3 .. 4;
		}
	`)
	wantString(t, v, "54")

	v = stringMain(t, `
		public function string main() {
			return tostring(4);
		}
	`)
	wantString(t, v, "4")

	v = stringMain(t, `
		public function string main() {
			return tostring(4.5);
		}
	`)
	wantString(t, v, "4.5")
}

func Test_Runtime_StringComparison(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number r = 0;
			if ("abc" < "abd") {
				r = r + 1;
			}
			if ("abc" == "abc") {
				r = r + 10;
			}
			if ("b" > "a") {
				r = r + 100;
			}
			return r;
		}
	`)
	wantNumber(t, v, 111)
}

func Test_Runtime_IncrementDecrement(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number x = 5;
			number a = x++;
			number b = ++x;
			number c = x--;
			number d = --x;
			return a*1000 + b*100 + c*10 + d;
		}
	`)
	// a=5 (x=6), b=7 (x=7), c=7 (x=6), d=5 (x=5)
	wantNumber(t, v, 5775)
}

func Test_Runtime_CompoundAssignments(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number x = 10;
			x += 5;
			x -= 3;
			x *= 4;
			x /= 2;
			x \= 2;
			x %= 7;
			x <<= 3;
			x >>= 1;
			x |= 1;
			x &= 13;
			x ^= 2;
			return x;
		}
	`)
	// 10 +5=15 -3=12 *4=48 /2=24 \2=12 %7=5 <<3=40 >>1=20 |1=21 &13=5 ^2=7
	wantNumber(t, v, 7)
}

func Test_Runtime_WhileAndDo(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number n = 0;
			number i = 0;
			while (i < 5) {
				n += i;
				++i;
			}
			do {
				n += 100;
			} while (0);
			return n;
		}
	`)
	wantNumber(t, v, 110)
}

func Test_Runtime_ForContinue(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number n = 0;
			for (number i = 0; i < 10; ++i) {
				if (i % 2) {
					continue;
				}
				n += i;
			}
			return n;
		}
	`)
	wantNumber(t, v, 20)
}

func Test_Runtime_BreakLevels(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number n = 0;
			for (number i = 0; i < 10; ++i) {
				for (number j = 0; j < 10; ++j) {
					if (j == 2) {
						break;
					}
					n += 1;
				}
				if (i == 4) {
					break 1;
				}
			}
			return n;
		}
	`)
	// 5 outer iterations, 2 inner increments each.
	wantNumber(t, v, 10)

	v = numberMain(t, `
		public function number main() {
			number n = 0;
			for (number i = 0; i < 10; ++i) {
				for (number j = 0; j < 10; ++j) {
					if (i == 3 && j == 1) {
						break 2;
					}
					n += 1;
				}
			}
			return n;
		}
	`)
	// Three full inner loops (30) plus one more iteration.
	wantNumber(t, v, 31)
}

func Test_Runtime_Switch(t *testing.T) {
	src := func(x string) string {
		return `
		public function number main() {
			number r = 0;
			switch (` + x + `) {
			case 1:
				r = 10;
				break;
			case 2:
				r = 20;
			case 3:
				r = r + 30;
				break;
			default:
				r = 0 - 1;
			}
			return r;
		}
		`
	}

	wantNumber(t, numberMain(t, src("1")), 10)
	// Case 2 falls through into case 3.
	wantNumber(t, numberMain(t, src("2")), 50)
	wantNumber(t, numberMain(t, src("3")), 30)
	wantNumber(t, numberMain(t, src("99")), -1)
}

func Test_Runtime_SwitchWithoutDefault(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number r = 5;
			switch (42) {
			case 1:
				r = 1;
				break;
			}
			return r;
		}
	`)
	wantNumber(t, v, 5)
}

func Test_Runtime_SwitchHeaderDeclaration(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			switch (number x = 2; x * 10) {
			case 20:
				return 1;
			}
			return 0;
		}
	`)
	wantNumber(t, v, 1)
}

func Test_Runtime_IfHeaderDeclaration(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			if (number x = 9; x > 5) {
				return x;
			}
			return 0;
		}
	`)
	wantNumber(t, v, 9)
}

func Test_Runtime_ElifChain(t *testing.T) {
	src := func(x string) string {
		return `
		public function number main() {
			number x = ` + x + `;
			if (x < 0) {
				return 1;
			} elif (x == 0) {
				return 2;
			} elif (x < 10) {
				return 3;
			} else {
				return 4;
			}
		}
		`
	}
	wantNumber(t, numberMain(t, src("0 - 5")), 1)
	wantNumber(t, numberMain(t, src("0")), 2)
	wantNumber(t, numberMain(t, src("5")), 3)
	wantNumber(t, numberMain(t, src("50")), 4)
}

func Test_Runtime_ImplicitReturn(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number x = 5;
		}
	`)
	wantNumber(t, v, 0)

	v = stringMain(t, `
		public function string main() {
		}
	`)
	wantString(t, v, "")
}

func Test_Runtime_Recursion(t *testing.T) {
	v := numberMain(t, `
		function number fib(number n) {
			if (n < 2) {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}
		public function number main() {
			return fib(10);
		}
	`)
	wantNumber(t, v, 55)
}

func Test_Runtime_MutualRecursion(t *testing.T) {
	v := numberMain(t, `
		function number isEven(number n) {
			if (n == 0) {
				return 1;
			}
			return isOdd(n - 1);
		}
		function number isOdd(number n) {
			if (n == 0) {
				return 0;
			}
			return isEven(n - 1);
		}
		public function number main() {
			return isEven(10) * 10 + isOdd(7);
		}
	`)
	wantNumber(t, v, 11)
}

func Test_Runtime_FirstClassFunctions(t *testing.T) {
	v := numberMain(t, `
		function number double(number x) {
			return x * 2;
		}
		function number triple(number x) {
			return x * 3;
		}
		public function number main() {
			number(number) f = double;
			number a = f(10);
			f = triple;
			return a + f(10);
		}
	`)
	wantNumber(t, v, 50)
}

func Test_Runtime_FunctionArray(t *testing.T) {
	v := numberMain(t, `
		function number double(number x) {
			return x * 2;
		}
		function number square(number x) {
			return x * x;
		}
		public function number main() {
			number(number)[] fs;
			fs[0] = double;
			fs[1] = square;
			return fs[0](3) + fs[1](3);
		}
	`)
	wantNumber(t, v, 15)
}

func Test_Runtime_ArraysAreValueTypes(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number[] a;
			a[0] = 1;
			number[] b = a;
			b[0] = 99;
			return a[0];
		}
	`)
	wantNumber(t, v, 1)
}

func Test_Runtime_ArrayByRef(t *testing.T) {
	v := numberMain(t, `
		function void push7(number[]& a) {
			a[sizeof a] = 7;
		}
		public function number main() {
			number[] a;
			push7(&a);
			push7(&a);
			return sizeof a * 10 + a[1];
		}
	`)
	wantNumber(t, v, 27)
}

func Test_Runtime_SizeofNonArray(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number x = 42;
			return sizeof x;
		}
	`)
	wantNumber(t, v, 1)
}

func Test_Runtime_SizeofTracksGrowth(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number[] a;
			number before = sizeof a;
			a[9];
			return before * 100 + sizeof a;
		}
	`)
	// Reading a[9] grows the array to 10 elements.
	wantNumber(t, v, 10)
}

func Test_Runtime_NestedTuples(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			[number,number] inner = {2, 3};
			[number,[number,number]] t = {1, inner};
			return t[0] * 100 + t[1][0] * 10 + t[1][1];
		}
	`)
	wantNumber(t, v, 123)

	// A nested brace literal stays an init list, which is not an element
	// type match.
	wantCompileError(t, `
		public function number main() {
			[number,[number,number]] t = {1, {2, 3}};
			return 0;
		}
	`, "Cannot convert")
}

func Test_Runtime_TupleAssignment(t *testing.T) {
	v := stringMain(t, `
		public function string main() {
			[number,string] t = {1, "a"};
			[number,string] u = t;
			u[1] = "b";
			return t[1] .. u[1];
		}
	`)
	wantString(t, v, "ab")
}

func Test_Runtime_InitListIntoArray(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number[] a = {5, 6, 7};
			return sizeof a * 100 + a[2];
		}
	`)
	wantNumber(t, v, 307)
}

func Test_Runtime_TernaryLvalue(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number a = 1;
			number b = 2;
			(1 ? a : b) = 10;
			(0 ? a : b) = 20;
			return a * 100 + b;
		}
	`)
	wantNumber(t, v, 1020)
}

func Test_Runtime_CommaSequencing(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number a = 0;
			number b = (a = 5, a + 1);
			return a * 10 + b;
		}
	`)
	wantNumber(t, v, 56)
}

func Test_Runtime_ConstructorInitializer(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number x(5), y = x * 2, z;
			return x * 100 + y * 10 + z;
		}
	`)
	wantNumber(t, v, 600)
}

func Test_Runtime_ShadowingInnerScope(t *testing.T) {
	v := numberMain(t, `
		public function number main() {
			number x = 1;
			{
				number x = 2;
				x = 3;
			}
			return x;
		}
	`)
	wantNumber(t, v, 1)
}

func Test_Runtime_StackDepthInvariant(t *testing.T) {
	m := NewModule()
	caller := m.PublicCaller("main", "function number main()")
	mustLoadSource(t, m, `
		function number helper(number a, number b) {
			number local1 = a + b;
			number local2 = local1 * 2;
			return local2;
		}
		public function number main() {
			return helper(1, 2) + helper(3, 4);
		}
	`)

	ctx := m.RuntimeContext()
	if got := len(ctx.stack); got != 0 {
		t.Fatalf("stack depth before call: %d", got)
	}
	wantNumber(t, mustCall(t, caller), 20)
	if got := len(ctx.stack); got != 0 {
		t.Fatalf("stack depth after call: %d", got)
	}
}

func Test_Runtime_ArgumentsEvaluateLeftToRight(t *testing.T) {
	v := stringMain(t, `
		string log = "";
		function number mark(number x) {
			log ..= tostring(x);
			return x;
		}
		function number sum3(number a, number b, number c) {
			return a + b + c;
		}
		public function string main() {
			sum3(mark(1), mark(2), mark(3));
			return log;
		}
	`)
	wantString(t, v, "123")
}
