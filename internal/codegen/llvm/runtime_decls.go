package llvm

import (
	"fmt"
	"strings"

	"github.com/teacompiler/teac/internal/runtime"
)

// EmitRuntimeDeclarations writes forward declarations for every tea_*
// runtime entry point the core may call (§4.7, §6.5). Grouped by
// category to match the spec's own grouping.
func EmitRuntimeDeclarations(sb *strings.Builder) {
	decls := []string{
		// Allocators
		"declare %tv @tea_alloc_string(ptr, i64)",
		"declare %tv @tea_alloc_list(i64)",
		"declare %tv @tea_alloc_struct(ptr)",
		"declare %tv @tea_alloc_error(ptr)",
		"declare %tv @tea_closure_new(ptr, i64)",
		"declare void @tea_closure_set_capture(ptr, i64, ptr)",
		"declare %tv @tea_closure_invoke(ptr, ...)",

		// Container ops
		"declare %tv @tea_list_get(ptr, i64)",
		"declare %tv @tea_list_set(ptr, i64, ptr)",
		"declare %tv @tea_list_concat(ptr, ptr)",
		"declare %tv @tea_list_slice(ptr, i64, i64)",
		"declare %tv @tea_list_append(ptr, ptr)",
		"declare i64 @tea_list_len(ptr)",
		"declare %tv @tea_string_concat(ptr, ptr)",
		"declare void @tea_string_push_str(ptr, ptr)",
		"declare %tv @tea_string_slice(ptr, i64, i64)",
		"declare %tv @tea_string_index(ptr, i64)",
		"declare %tv @tea_dict_new()",
		"declare %tv @tea_dict_get(ptr, ptr)",
		"declare void @tea_dict_set(ptr, ptr, ptr)",
		"declare %tv @tea_dict_keys(ptr)",
		"declare %tv @tea_dict_values(ptr)",
		"declare %tv @tea_dict_entries(ptr)",

		// Equality
		"declare i1 @tea_string_equal(ptr, ptr)",
		"declare i1 @tea_list_equal(ptr, ptr)",
		"declare i1 @tea_struct_equal(ptr, ptr)",
		"declare i1 @tea_closure_equal(ptr, ptr)",
		"declare i1 @tea_dict_equal(ptr, ptr)",

		// Error slot
		fmt.Sprintf("declare i1 @%s()", runtime.SymErrorCurrent),
		fmt.Sprintf("declare void @%s(ptr)", runtime.SymErrorSetCurrent),
		fmt.Sprintf("declare void @%s()", runtime.SymErrorClearCurrent),
		fmt.Sprintf("declare ptr @%s(ptr)", runtime.SymErrorGetTemplate),
		"declare i1 @tea_error_template_eq(ptr)",

		// Boxing helpers (per-ValueType)
		"declare %tv @tea_box_int(i64)",
		"declare %tv @tea_box_float(double)",
		"declare %tv @tea_box_bool(i1)",
		"declare i64 @tea_unbox_int(ptr)",
		"declare double @tea_unbox_float(ptr)",
		"declare i1 @tea_unbox_bool(ptr)",
		"declare %tv @tea_nil_optional()",
		"declare %tv @tea_to_string(ptr)",

		// Struct/member access
		"declare %tv @tea_struct_field_get(ptr, i64)",
		"declare %tv @tea_error_field_get(ptr, i64)",

		// I/O, filesystem, process, regex, JSON — consumed only at the
		// ABI boundary (§6.5); bodies live in the runtime library.
		"declare %tv @tea_io_print(ptr)",
		"declare %tv @tea_io_println(ptr)",
		"declare %tv @tea_fs_read_file(ptr)",
		"declare %tv @tea_fs_write_file(ptr, ptr)",
		"declare %tv @tea_process_spawn(ptr)",
		"declare %tv @tea_process_exit(i64)",
		"declare %tv @tea_regex_compile(ptr)",
		"declare %tv @tea_regex_match(ptr, ptr)",
		"declare %tv @tea_json_parse(ptr)",
		"declare %tv @tea_json_stringify(ptr)",

		// Panics and aborts (§7: unwrap on Nil, panic(), exit())
		fmt.Sprintf("declare void @%s(ptr) noreturn", runtime.SymPanic),
		fmt.Sprintf("declare void @%s(ptr) noreturn", runtime.SymUnwrapFailed),
	}
	for _, d := range decls {
		sb.WriteString(d)
		sb.WriteString("\n")
	}
}
